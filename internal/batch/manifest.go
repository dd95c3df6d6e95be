package batch

import (
	"encoding/json"
	"os"
)

// ManifestEntry represents one exported tick in the output manifest.
type ManifestEntry struct {
	Tick  int    `json:"tick"`
	File  string `json:"file"`
	Frame int    `json:"frame"`
	Image string `json:"image"`
}

// WriteManifest writes manifest.json for the successful results. names maps
// store file indices to pose file names.
func WriteManifest(path string, results []Result, names []string) error {
	entries := make([]ManifestEntry, 0, len(results))
	for _, r := range results {
		if !r.Success {
			continue
		}
		name := ""
		if r.File >= 0 && r.File < len(names) {
			name = names[r.File]
		}
		entries = append(entries, ManifestEntry{
			Tick:  r.Tick,
			File:  name,
			Frame: r.Frame,
			Image: r.Image,
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
