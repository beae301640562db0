package main

import (
	"fmt"
	"log/slog"
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/whendo/brain"
	"github.com/pthm-cable/whendo/config"
	"github.com/pthm-cable/whendo/program"
	"github.com/pthm-cable/whendo/sense"
	"github.com/pthm-cable/whendo/world"
)

func parseColor(s string) (sense.Color, error) {
	if s == "" {
		return sense.NoColor, nil
	}
	c, ok := sense.ParseColor(s)
	if !ok {
		return sense.NoColor, fmt.Errorf("unknown color %q", s)
	}
	return c, nil
}

// loadPrograms reads, migrates and builds every actor's program. Build
// warnings are logged, not fatal: the dropped tiles are simply absent.
func loadPrograms(reg brain.Registry, lvl *program.Level) ([][]*brain.Task, error) {
	out := make([][]*brain.Task, len(lvl.Actors))
	for i, a := range lvl.Actors {
		path := lvl.ProgramPath(a)
		if path == "" {
			continue
		}
		p, _, err := program.Load(path)
		if err != nil {
			return nil, err
		}
		if p.Actor != a.Type {
			slog.Warn("program written for another actor", "program", path, "for", p.Actor, "actor", a.Type)
			p.Actor = a.Type
		}
		pages, warnings := p.Build(reg)
		for _, w := range warnings {
			slog.Warn("program", "path", path, "warning", w)
		}
		out[i] = pages
	}
	return out, nil
}

// buildWorld lays out a level over generated terrain.
func buildWorld(cfg *config.Config, reg brain.Registry, lvl *program.Level, seed int64) (*world.World, error) {
	programs, err := loadPrograms(reg, lvl)
	if err != nil {
		return nil, err
	}

	w := world.New(cfg, world.GenerateTerrain(cfg, seed), seed)
	for _, t := range lvl.Things {
		c, err := parseColor(t.Color)
		if err != nil {
			return nil, fmt.Errorf("thing %s: %w", t.Type, err)
		}
		radius := t.Radius
		if radius == 0 {
			radius = 1
		}
		w.Spawn(world.Spawn{Type: t.Type, Color: c, Pos: t.At.Vec(), Radius: radius})
	}
	for i, a := range lvl.Actors {
		c, err := parseColor(a.Color)
		if err != nil {
			return nil, fmt.Errorf("actor %s: %w", a.Type, err)
		}
		w.AddActor(a.Type, c, a.At.Vec(), a.Heading*math.Pi/180, programs[i])
	}
	for _, p := range lvl.Paths {
		c, err := parseColor(p.Color)
		if err != nil {
			return nil, fmt.Errorf("path: %w", err)
		}
		pts := make([]r3.Vec, len(p.Points))
		for i, pt := range p.Points {
			pts[i] = pt.Vec()
		}
		w.AddPath(c, pts, p.Loop)
	}
	return w, nil
}

// migratePrograms rewrites every actor program at the current version.
func migratePrograms(lvl *program.Level) error {
	for _, a := range lvl.Actors {
		path := lvl.ProgramPath(a)
		if path == "" {
			continue
		}
		p, notes, err := program.Load(path)
		if err != nil {
			return err
		}
		if len(notes) == 0 {
			continue
		}
		if err := program.Save(path, p); err != nil {
			return err
		}
		slog.Info("program rewritten", "path", path, "changes", len(notes))
	}
	return nil
}
