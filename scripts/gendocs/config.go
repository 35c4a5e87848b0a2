package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/leapstack-labs/njkast/internal/cli/config"
	"github.com/leapstack-labs/njkast/pkg/token"
)

// ConfigField describes one key of njkast.yaml.
type ConfigField struct {
	Name        string
	Type        string
	Default     string
	Description string
}

// EnvVar returns the environment variable that sets the field.
func (f ConfigField) EnvVar() string {
	return config.EnvVar(f.Name)
}

// configSchema lists the configuration keys with their defaults.
func configSchema() []ConfigField {
	cfg := config.Default()
	tags := token.DefaultTags()

	return []ConfigField{
		{Name: "extensions", Type: "[]string", Default: strings.Join(cfg.Extensions, ", "), Description: "Template file extensions to discover"},
		{Name: "exclude", Type: "[]string", Default: strings.Join(cfg.Exclude, ", "), Description: "Directory name patterns to skip"},
		{Name: "workers", Type: "int", Default: "0", Description: "Concurrent parses, 0 uses all CPUs"},
		{Name: "index_path", Type: "string", Default: cfg.IndexPath, Description: "Index database, relative to the config file"},
		{Name: "output", Type: "string", Default: cfg.OutputFormat, Description: "Output format: " + strings.Join(config.OutputFormats, ", ")},
		{Name: "verbose", Type: "bool", Default: "false", Description: "Debug logging"},
		{Name: "log_level", Type: "string", Default: cfg.LogLevel, Description: "Log level: debug, info, warn, error"},
		{Name: "tags.block_start", Type: "string", Default: tags.BlockStart, Description: "Opens a directive"},
		{Name: "tags.block_end", Type: "string", Default: tags.BlockEnd, Description: "Closes a directive"},
		{Name: "tags.variable_start", Type: "string", Default: tags.VariableStart, Description: "Opens an output expression"},
		{Name: "tags.variable_end", Type: "string", Default: tags.VariableEnd, Description: "Closes an output expression"},
		{Name: "tags.comment_start", Type: "string", Default: tags.CommentStart, Description: "Opens a comment"},
		{Name: "tags.comment_end", Type: "string", Default: tags.CommentEnd, Description: "Closes a comment"},
	}
}

// generateConfigDocs generates the configuration reference page.
func generateConfigDocs(outDir string) error {
	log.Printf("Generating config docs to %s", outDir)

	if err := os.MkdirAll(outDir, 0750); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	w := NewMarkdownWriter()
	w.Frontmatter("Configuration", "njkast configuration reference")
	w.GeneratedMarker()

	w.Header(1, "Configuration")
	w.Paragraph(fmt.Sprintf("njkast reads %s from the working directory or the nearest parent. Relative paths resolve against the directory holding the file.",
		InlineCode(config.ConfigFileNames[0])))

	headers := []string{"Key", "Type", "Default", "Description"}
	var rows [][]string
	for _, f := range configSchema() {
		rows = append(rows, []string{InlineCode(f.Name), f.Type, InlineCode(f.Default), f.Description})
	}
	w.Table(headers, rows)

	w.Header(2, "Example")
	w.CodeBlock("yaml", `extensions: [.njk, .html]
exclude: [node_modules, dist]
index_path: .cache/njkast.db
output: json

# Match a site that uses Jinja-style comment delimiters
tags:
  comment_start: "<#"
  comment_end: "#>"`)

	filename := filepath.Join(outDir, "configuration.md")
	if err := os.WriteFile(filename, w.Bytes(), 0600); err != nil {
		return err
	}
	log.Printf("  Generated configuration.md")
	return nil
}
