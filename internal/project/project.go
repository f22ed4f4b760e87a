// Package project provides project file handling and persistence. A project
// file (.pmproj) records the whole editing session: the base image path, the
// canvas, and the layer stack.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"photomark/internal/editor"
	"photomark/pkg/geometry"
)

// File represents a photomark project file (.pmproj).
type File struct {
	Version  int       `json:"version"`
	Name     string    `json:"name"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`

	// Base image path, relative to the project file when possible.
	ImagePath string `json:"image,omitempty"`

	Canvas geometry.Size   `json:"canvas"`
	Zoom   float64         `json:"zoom,omitempty"`
	Layers []*editor.Layer `json:"layers"`
}

// New creates a new project file.
func New(name string) *File {
	now := time.Now()
	return &File{
		Version:  1,
		Name:     name,
		Created:  now,
		Modified: now,
	}
}

// Load loads a project from a .pmproj file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var proj File
	if err := json.Unmarshal(data, &proj); err != nil {
		return nil, fmt.Errorf("parse project: %w", err)
	}
	return &proj, nil
}

// Save saves the project to a file.
func (p *File) Save(path string) error {
	p.Modified = time.Now()

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Snapshot copies the session state out of the engine. Layers are cloned so
// the snapshot stays fixed while the user keeps editing before Save.
func (p *File) Snapshot(projectPath string, e *editor.Engine) {
	if base := e.Image(); base != nil {
		p.SetImage(projectPath, base.Src)
	} else {
		p.ImagePath = ""
	}
	p.Canvas = e.CanvasSize()
	p.Zoom = e.Zoom()
	live := e.Layers()
	p.Layers = make([]*editor.Layer, len(live))
	for i, l := range live {
		p.Layers[i] = l.Clone()
	}
	p.Modified = time.Now()
}

// Restore loads the session back into the engine. The base image is decoded
// by the caller; Restore only applies canvas, zoom, and layers.
func (p *File) Restore(e *editor.Engine) {
	if !p.Canvas.Empty() {
		e.SetCanvasSize(p.Canvas.Width, p.Canvas.Height)
	}
	e.LoadFromTemplate(p.Layers)
	if p.Zoom > 0 {
		e.SetZoom(p.Zoom)
	}
}

// SetImage sets the base image path, relative to the project file when
// possible.
func (p *File) SetImage(projectPath, imagePath string) {
	rel, err := filepath.Rel(filepath.Dir(projectPath), imagePath)
	if err != nil {
		p.ImagePath = imagePath
	} else {
		p.ImagePath = rel
	}
	p.Modified = time.Now()
}

// AbsImagePath returns the absolute path to the base image.
func (p *File) AbsImagePath(projectPath string) string {
	if p.ImagePath == "" {
		return ""
	}
	if filepath.IsAbs(p.ImagePath) {
		return p.ImagePath
	}
	return filepath.Join(filepath.Dir(projectPath), p.ImagePath)
}
