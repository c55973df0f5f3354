package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"cctvmap/pkg/dataset"
	"cctvmap/pkg/model"
)

func main() {
	inputPath := flag.String("input", "", "Path to input dataset (.shp, .geojson, .yaml, .json)")
	outputPath := flag.String("output", "", "Path to output dataset (.yaml, .yml, .json, .geojson)")
	set := flag.String("set", "", "Category set to validate against (emergency, commerce); empty skips validation")
	flag.Parse()

	if *inputPath == "" || *outputPath == "" {
		flag.Usage()
		log.Fatal("Input and output paths are required")
	}

	if err := run(*inputPath, *outputPath, *set); err != nil {
		log.Fatal(err)
	}
}

func run(inputPath, outputPath, set string) error {
	locs, err := dataset.LoadFile(inputPath)
	if err != nil {
		return err
	}

	if set != "" {
		allowed, err := model.CategorySet(set)
		if err != nil {
			return err
		}
		if err := dataset.Validate(locs, allowed); err != nil {
			return fmt.Errorf("input failed validation: %w", err)
		}
	}

	data, err := encode(locs, strings.ToLower(filepath.Ext(outputPath)))
	if err != nil {
		return err
	}

	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	fmt.Printf("Successfully converted %d locations to %s\n", len(locs), outputPath)
	return nil
}

func encode(locs []model.Location, ext string) ([]byte, error) {
	switch ext {
	case ".yaml", ".yml":
		data, err := yaml.Marshal(dataset.Document{Locations: locs})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return data, nil
	case ".json":
		data, err := json.MarshalIndent(dataset.Document{Locations: locs}, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return data, nil
	case ".geojson":
		data, err := json.MarshalIndent(dataset.ToFeatureCollection(locs), "", "  ")
		if err != nil {
			return nil, fmt.Errorf("failed to marshal GeoJSON: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported output format %q", ext)
	}
}
