package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/syssam/xarc"
)

// mappingFile is the YAML declaration format consumed by the CLI.
//
//	mappings:
//	  - table: time_entries
//	    role: chargeable
//	    relations:
//	      - column: employee_id
//	        ref_table: employees
//	      - column: product_id
//	        ref_table: products
type mappingFile struct {
	Mappings []mappingConfig `yaml:"mappings"`
}

type mappingConfig struct {
	Table            string           `yaml:"table"`
	Role             string           `yaml:"role"`
	PrimaryKey       string           `yaml:"primary_key"`
	Unique           bool             `yaml:"unique"`
	ForeignKeyPrefix string           `yaml:"foreign_key_prefix"`
	IndexPrefix      string           `yaml:"index_prefix"`
	Relations        []relationConfig `yaml:"relations"`
}

type relationConfig struct {
	Column    string `yaml:"column"`
	RefTable  string `yaml:"ref_table"`
	RefColumn string `yaml:"ref_column"`
}

// loadMappings reads and validates a mapping declaration file. Builder
// validation applies, so a malformed file fails before any DDL is
// compiled.
func loadMappings(path string) ([]*xarc.Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var file mappingFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if len(file.Mappings) == 0 {
		return nil, fmt.Errorf("config %s declares no mappings", path)
	}
	mappings := make([]*xarc.Mapping, 0, len(file.Mappings))
	for _, mc := range file.Mappings {
		b := xarc.Define(mc.Table, mc.Role)
		if mc.PrimaryKey != "" {
			b.PrimaryKey(mc.PrimaryKey)
		}
		if mc.Unique {
			b.UniqueAcrossRelations()
		}
		if mc.ForeignKeyPrefix != "" {
			b.ForeignKeyPrefix(mc.ForeignKeyPrefix)
		}
		if mc.IndexPrefix != "" {
			b.IndexPrefix(mc.IndexPrefix)
		}
		for _, rc := range mc.Relations {
			refColumn := rc.RefColumn
			if refColumn == "" {
				refColumn = "id"
			}
			b.Relation(rc.Column, rc.RefTable, refColumn)
		}
		m, err := b.Build()
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}
	return mappings, nil
}
