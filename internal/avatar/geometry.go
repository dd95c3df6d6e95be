package avatar

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"vrm-pose-player/internal/mathutil"
)

func accessor(doc *gltf.Document, i int) (*gltf.Accessor, error) {
	if i < 0 || i >= len(doc.Accessors) {
		return nil, fmt.Errorf("avatar: accessor %d out of range", i)
	}
	return doc.Accessors[i], nil
}

func toVec3s(in [][3]float32) []mathutil.Vec3 {
	out := make([]mathutil.Vec3, len(in))
	for i, v := range in {
		out[i] = mathutil.Vec3{float64(v[0]), float64(v[1]), float64(v[2])}
	}
	return out
}

func readMeshes(doc *gltf.Document) ([]Mesh, error) {
	meshes := make([]Mesh, len(doc.Meshes))
	for mi, gm := range doc.Meshes {
		m := Mesh{Name: gm.Name}
		for pi, gp := range gm.Primitives {
			p, err := readPrimitive(doc, gp)
			if err != nil {
				return nil, fmt.Errorf("avatar: mesh %d primitive %d: %w", mi, pi, err)
			}
			m.Primitives = append(m.Primitives, p)
		}
		meshes[mi] = m
	}
	return meshes, nil
}

func readPrimitive(doc *gltf.Document, gp *gltf.Primitive) (Primitive, error) {
	p := Primitive{Material: -1}
	if gp.Material != nil {
		p.Material = *gp.Material
	}

	posIdx, ok := gp.Attributes["POSITION"]
	if !ok {
		return p, fmt.Errorf("no POSITION attribute")
	}
	acr, err := accessor(doc, posIdx)
	if err != nil {
		return p, err
	}
	pos, err := modeler.ReadPosition(doc, acr, nil)
	if err != nil {
		return p, fmt.Errorf("positions: %w", err)
	}
	p.Positions = toVec3s(pos)

	if i, ok := gp.Attributes["NORMAL"]; ok {
		if acr, err := accessor(doc, i); err == nil {
			if nrm, err := modeler.ReadNormal(doc, acr, nil); err == nil {
				p.Normals = toVec3s(nrm)
			}
		}
	}
	if i, ok := gp.Attributes["TEXCOORD_0"]; ok {
		if acr, err := accessor(doc, i); err == nil {
			if uv, err := modeler.ReadTextureCoord(doc, acr, nil); err == nil {
				p.UVs = uv
			}
		}
	}
	if i, ok := gp.Attributes["JOINTS_0"]; ok {
		acr, err := accessor(doc, i)
		if err != nil {
			return p, err
		}
		if p.Joints, err = modeler.ReadJoints(doc, acr, nil); err != nil {
			return p, fmt.Errorf("joints: %w", err)
		}
	}
	if i, ok := gp.Attributes["WEIGHTS_0"]; ok {
		acr, err := accessor(doc, i)
		if err != nil {
			return p, err
		}
		if p.Weights, err = modeler.ReadWeights(doc, acr, nil); err != nil {
			return p, fmt.Errorf("weights: %w", err)
		}
	}

	if gp.Indices != nil {
		acr, err := accessor(doc, *gp.Indices)
		if err != nil {
			return p, err
		}
		if p.Indices, err = modeler.ReadIndices(doc, acr, nil); err != nil {
			return p, fmt.Errorf("indices: %w", err)
		}
	} else {
		p.Indices = make([]uint32, len(p.Positions))
		for i := range p.Indices {
			p.Indices[i] = uint32(i)
		}
	}
	return p, nil
}

func readSkins(doc *gltf.Document) ([]Skin, error) {
	skins := make([]Skin, len(doc.Skins))
	for si, gs := range doc.Skins {
		s := Skin{Joints: append([]int(nil), gs.Joints...)}
		s.InverseBind = make([]mathutil.Mat4, len(s.Joints))
		for i := range s.InverseBind {
			s.InverseBind[i] = mathutil.Mat4Identity()
		}

		if gs.InverseBindMatrices != nil {
			acr, err := accessor(doc, *gs.InverseBindMatrices)
			if err != nil {
				return nil, fmt.Errorf("avatar: skin %d: %w", si, err)
			}
			data, err := modeler.ReadAccessor(doc, acr, nil)
			if err != nil {
				return nil, fmt.Errorf("avatar: skin %d inverse bind: %w", si, err)
			}
			mats, ok := data.([][4][4]float32)
			if !ok {
				return nil, fmt.Errorf("avatar: skin %d inverse bind: unexpected %T", si, data)
			}
			for i := 0; i < len(mats) && i < len(s.InverseBind); i++ {
				s.InverseBind[i] = fromColumns(mats[i])
			}
		}
		skins[si] = s
	}
	return skins, nil
}

// fromColumns converts an accessor MAT4, stored as four columns.
func fromColumns(c [4][4]float32) mathutil.Mat4 {
	var cm [16]float64
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			cm[col*4+row] = float64(c[col][row])
		}
	}
	return mathutil.Mat4FromColumnMajor(cm)
}

func readMaterials(doc *gltf.Document) []Material {
	mats := make([]Material, len(doc.Materials))
	for i, gm := range doc.Materials {
		m := Material{
			Name:      gm.Name,
			BaseColor: [4]float64{1, 1, 1, 1},
			Image:     -1,
			AlphaMode: "OPAQUE",
		}
		switch gm.AlphaMode {
		case gltf.AlphaMask:
			m.AlphaMode = "MASK"
		case gltf.AlphaBlend:
			m.AlphaMode = "BLEND"
		}
		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			m.BaseColor = pbr.BaseColorFactorOrDefault()
			if tex := pbr.BaseColorTexture; tex != nil && tex.Index < len(doc.Textures) {
				if src := doc.Textures[tex.Index].Source; src != nil {
					m.Image = *src
				}
			}
		}
		mats[i] = m
	}
	return mats
}

func readImages(doc *gltf.Document, dir string) ([]Image, error) {
	imgs := make([]Image, len(doc.Images))
	for i, gi := range doc.Images {
		img := Image{Name: gi.Name, MimeType: gi.MimeType}
		switch {
		case gi.BufferView != nil:
			data, err := bufferViewBytes(doc, *gi.BufferView)
			if err != nil {
				return nil, fmt.Errorf("avatar: image %d: %w", i, err)
			}
			img.Data = data
		case gi.IsEmbeddedResource():
			data, err := gi.MarshalData()
			if err != nil {
				return nil, fmt.Errorf("avatar: image %d: %w", i, err)
			}
			img.Data = data
		case gi.URI != "" && filepath.IsLocal(gi.URI):
			// A missing external file leaves the material untextured.
			if data, err := os.ReadFile(filepath.Join(dir, gi.URI)); err == nil {
				img.Data = data
			}
		}
		imgs[i] = img
	}
	return imgs, nil
}

func bufferViewBytes(doc *gltf.Document, i int) ([]byte, error) {
	if i < 0 || i >= len(doc.BufferViews) {
		return nil, fmt.Errorf("buffer view %d out of range", i)
	}
	bv := doc.BufferViews[i]
	if bv.Buffer < 0 || bv.Buffer >= len(doc.Buffers) {
		return nil, fmt.Errorf("buffer %d out of range", bv.Buffer)
	}
	data := doc.Buffers[bv.Buffer].Data
	end := bv.ByteOffset + bv.ByteLength
	if bv.ByteOffset < 0 || end > len(data) {
		return nil, fmt.Errorf("buffer view %d exceeds buffer", i)
	}
	return data[bv.ByteOffset:end], nil
}
