package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/komsit37/ratio/pkg/ratio/reconcile"
	"github.com/komsit37/ratio/pkg/ratio/types"
)

// DefaultEvents is used when no events file is configured.
var DefaultEvents = []types.Event{
	{
		Date:        "1971-08",
		Label:       "Nixon ends convertibility",
		Description: `Nixon suspends gold convertibility ("Nixon Shock"), effectively ending Bretton Woods.`,
	},
}

// EventsSource loads historical events from a YAML file or a directory of
// YAML files. An empty Path yields DefaultEvents.
type EventsSource struct {
	Path string
}

func (s EventsSource) Load(ctx context.Context) ([]types.Event, error) { //nolint:revive // ctx reserved for remote sources
	if strings.TrimSpace(s.Path) == "" {
		return append([]types.Event(nil), DefaultEvents...), nil
	}
	info, err := os.Stat(s.Path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		data, err := os.ReadFile(s.Path)
		if err != nil {
			return nil, err
		}
		events, err := parseEvents(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.Path, err)
		}
		return events, nil
	}

	// Recursively load all YAML files in the directory and combine.
	var files []string
	err = filepath.WalkDir(s.Path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(d.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	var all []types.Event
	for _, full := range files {
		data, err := os.ReadFile(full)
		if err != nil {
			return nil, err
		}
		events, err := parseEvents(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", full, err)
		}
		all = append(all, events...)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Date < all[j].Date })
	return all, nil
}

// parseEvents supports two YAML shapes:
// 1) Top-level list of events: "- date: ..."
// 2) Map with an events key: "events: [...]"
func parseEvents(data []byte) ([]types.Event, error) {
	var events []types.Event
	if err := yaml.Unmarshal(data, &events); err != nil {
		var alt struct {
			Events []types.Event `yaml:"events"`
		}
		if err2 := yaml.Unmarshal(data, &alt); err2 != nil {
			return nil, err
		}
		events = alt.Events
	}
	for i, e := range events {
		k, ok := reconcile.NormalizeMonth(string(e.Date))
		if !ok {
			return nil, fmt.Errorf("event %d (%s): invalid date %q", i, e.Label, e.Date)
		}
		events[i].Date = k
		events[i].Label = strings.TrimSpace(e.Label)
	}
	return events, nil
}
