package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/discernus/discernus-sub017/core/extract"
	"github.com/discernus/discernus-sub017/core/registry"
)

func (a *app) markersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "markers",
		Short: "Print the resolved marker conventions as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.registry()
			if err != nil {
				return err
			}
			out, err := reg.Marshal()
			if err != nil {
				return fmt.Errorf("encode markers: %w", err)
			}
			_, err = a.stdout.Write(out)
			return err
		},
	}
}

// registry resolves the marker conventions: the registry file when given,
// plus any --marker flags. Without a file the flags replace the default.
func (a *app) registry() (*registry.Registry, error) {
	flagged := make([]extract.Markers, 0, len(a.markers))
	for _, value := range a.markers {
		m, err := parseMarker(value)
		if err != nil {
			return nil, err
		}
		flagged = append(flagged, m)
	}

	if a.markersFile == "" {
		if len(flagged) == 0 {
			return registry.Default(), nil
		}
		return registry.New(flagged...)
	}

	reg, err := registry.Load(a.markersFile)
	if err != nil {
		return nil, err
	}
	if len(flagged) == 0 {
		return reg, nil
	}
	return reg.Add(flagged...)
}

// parseMarker reads NAME or NAME:VERSION.
func parseMarker(value string) (extract.Markers, error) {
	name, version, _ := strings.Cut(strings.TrimSpace(value), ":")
	if name == "" {
		return extract.Markers{}, fmt.Errorf("invalid --marker %q: want NAME[:VERSION]", value)
	}
	return extract.Markers{Name: name, Version: version}, nil
}
