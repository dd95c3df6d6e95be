package avatar

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Extension names carrying the humanoid bone map.
const (
	ExtVRM0 = "VRM"
	ExtVRM1 = "VRMC_vrm"
)

type vrm0Ext struct {
	Meta struct {
		Title  string `json:"title"`
		Author string `json:"author"`
	} `json:"meta"`
	Humanoid struct {
		HumanBones []struct {
			Bone string `json:"bone"`
			Node int    `json:"node"`
		} `json:"humanBones"`
	} `json:"humanoid"`
}

type vrm1Ext struct {
	SpecVersion string `json:"specVersion"`
	Meta        struct {
		Name    string   `json:"name"`
		Authors []string `json:"authors"`
	} `json:"meta"`
	Humanoid struct {
		HumanBones map[string]struct {
			Node int `json:"node"`
		} `json:"humanBones"`
	} `json:"humanoid"`
}

// Meta describes the model.
type Meta struct {
	Version string // "0.x" or the VRMC_vrm specVersion
	Title   string
	Author  string
}

// parseHumanoid reads the bone map from whichever VRM extension is present.
// Extension values may be raw JSON or already-decoded maps.
func parseHumanoid(exts map[string]any, nodeCount int) (map[string]int, Meta, error) {
	if v, ok := exts[ExtVRM1]; ok {
		var ext vrm1Ext
		if err := remarshal(v, &ext); err != nil {
			return nil, Meta{}, fmt.Errorf("avatar: %s: %w", ExtVRM1, err)
		}
		bones := make(map[string]int, len(ext.Humanoid.HumanBones))
		for name, b := range ext.Humanoid.HumanBones {
			if b.Node >= 0 && b.Node < nodeCount {
				bones[name] = b.Node
			}
		}
		meta := Meta{Version: ext.SpecVersion, Title: ext.Meta.Name, Author: strings.Join(ext.Meta.Authors, ", ")}
		if meta.Version == "" {
			meta.Version = "1.0"
		}
		return bones, meta, nil
	}

	if v, ok := exts[ExtVRM0]; ok {
		var ext vrm0Ext
		if err := remarshal(v, &ext); err != nil {
			return nil, Meta{}, fmt.Errorf("avatar: %s: %w", ExtVRM0, err)
		}
		bones := make(map[string]int, len(ext.Humanoid.HumanBones))
		for _, b := range ext.Humanoid.HumanBones {
			if b.Node >= 0 && b.Node < nodeCount {
				bones[b.Bone] = b.Node
			}
		}
		return bones, Meta{Version: "0.x", Title: ext.Meta.Title, Author: ext.Meta.Author}, nil
	}

	return nil, Meta{}, ErrNotVRM
}

func remarshal(v any, out any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

// BoneNames lists the humanoid bones the model maps, sorted.
func (a *Avatar) BoneNames() []string {
	names := make([]string, 0, len(a.humanoid))
	for name := range a.humanoid {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MissingBones returns the names from want that the model does not map.
func (a *Avatar) MissingBones(want []string) []string {
	var missing []string
	for _, name := range want {
		if _, ok := a.humanoid[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}
