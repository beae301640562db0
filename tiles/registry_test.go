package tiles

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/pthm-cable/whendo/brain"
)

func TestDefaultCatalog(t *testing.T) {
	reg, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}

	total := 0
	for role := brain.RoleSensor; role < brain.NumRoles; role++ {
		protos := reg.All(role)
		if len(protos) == 0 {
			t.Errorf("no %s tiles", role)
		}
		total += len(protos)
		for _, p := range protos {
			if p.Role != role {
				t.Errorf("%s: role = %s, want %s", p.ID, p.Role, role)
			}
			e := p.Clone()
			var ok bool
			switch role {
			case brain.RoleSensor:
				_, ok = e.(brain.Sensor)
			case brain.RoleFilter:
				_, ok = e.(brain.Filter)
			case brain.RoleActuator:
				_, ok = e.(brain.Actuator)
			case brain.RoleSelector:
				_, ok = e.(brain.Selector)
			case brain.RoleModifier:
				_, ok = e.(brain.Modifier)
			}
			if !ok {
				t.Errorf("%s: clone %T does not implement its role", p.ID, e)
			}
			if e.Proto() != p {
				t.Errorf("%s: clone points at a different prototype", p.ID)
			}
		}
		if !slices.IsSortedFunc(protos, func(a, b *brain.Prototype) int { return strings.Compare(a.ID, b.ID) }) {
			t.Errorf("%s tiles not sorted by id", role)
		}
	}
	if reg.Len() != total {
		t.Errorf("Len = %d, want %d", reg.Len(), total)
	}

	for _, id := range []string{brain.HiddenSelectorAuto, brain.HiddenSelectorGamePad} {
		if p := reg.Selector(id); p == nil || !p.Hidden {
			t.Errorf("hidden selector %s missing or visible", id)
		}
	}
	for _, s := range reg.All(brain.RoleSensor) {
		if s.DefaultFilter == "" {
			continue
		}
		if f := reg.Filter(s.DefaultFilter); f == nil || !f.Hidden {
			t.Errorf("%s: default filter %s missing or visible", s.ID, s.DefaultFilter)
		}
	}
}

func TestClonesAreIndependent(t *testing.T) {
	a := testReg.New(brain.RoleSelector, "selector.wander")
	b := testReg.New(brain.RoleSelector, "selector.wander")
	if a == b {
		t.Fatal("New returned the same instance twice")
	}
	if testReg.New(brain.RoleSelector, "selector.nope") != nil {
		t.Error("unknown id should clone to nil")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		catalog string
		target  error
	}{
		{
			name:    "unknown kind",
			catalog: "sensors:\n  - id: sensor.x\n    kind: telepathy\n",
			target:  ErrUnknownKind,
		},
		{
			name:    "duplicate id",
			catalog: "sensors:\n  - id: sensor.x\n    kind: always\n  - id: sensor.x\n    kind: always\n",
		},
		{
			name:    "unknown category",
			catalog: "sensors:\n  - id: sensor.x\n    kind: always\n    categories: [sensor.psychic]\n",
		},
		{
			name:    "unknown datatype",
			catalog: "sensors:\n  - id: sensor.x\n    kind: always\n    output: [smell]\n",
		},
		{
			name:    "bad params",
			catalog: "filters:\n  - id: filter.x\n    kind: random\n    params: {chance: 2}\n",
		},
		{
			name:    "missing default filter",
			catalog: "sensors:\n  - id: sensor.x\n    kind: always\n    default_filter: filter.nope\n",
		},
		{
			name:    "missing id",
			catalog: "sensors:\n  - kind: always\n",
		},
		{
			name:    "malformed yaml",
			catalog: "sensors: [",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load([]byte(tt.catalog))
			if err == nil {
				t.Fatal("Load succeeded, want error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Errorf("error %v does not wrap %v", err, tt.target)
			}
		})
	}
}

func TestCompatibility(t *testing.T) {
	tests := []struct {
		name      string
		rule      []string
		candidate string
		actor     string
		archived  bool
		want      bool
	}{
		{"type filter after see", []string{"sensor.see"}, "filter.apple", "bot", false, true},
		{"type filter needs targets", []string{"sensor.always"}, "filter.apple", "bot", false, false},
		{"one color per rule", []string{"sensor.see", "filter.red"}, "filter.blue", "bot", false, false},
		{"toward needs something to go to", []string{"sensor.always", "actuator.move"}, "selector.toward", "bot", false, false},
		{"toward after see", []string{"sensor.see", "actuator.move"}, "selector.toward", "bot", false, true},
		{"toward refuses not", []string{"sensor.see", "filter.not", "actuator.move"}, "selector.toward", "bot", false, false},
		{"quickly needs a speed", []string{"sensor.always", "actuator.say"}, "modifier.quickly", "bot", false, false},
		{"up is for flyers", []string{"sensor.always", "actuator.move"}, "modifier.up", "bot", false, false},
		{"up on a jet", []string{"sensor.always", "actuator.move"}, "modifier.up", "jet", false, true},
		{"gamepad selector needs a direction", []string{"sensor.keyboard", "actuator.move"}, "selector.gamepad", "bot", false, false},
		{"gamepad selector after gamepad", []string{"sensor.gamepad", "actuator.move"}, "selector.gamepad", "bot", false, true},
		{"button refuses stick", []string{"sensor.gamepad", "filter.button.a"}, "filter.stick.left", "bot", false, false},
		{"hidden tiles are never offered", []string{"sensor.timer"}, "filter.timer.default", "bot", true, false},
		{"archived hidden by default", []string{"sensor.always", "actuator.say"}, "modifier.text", "bot", false, false},
		{"archived on request", []string{"sensor.always", "actuator.say"}, "modifier.text", "bot", true, true},
		{"boats do not shoot", []string{"sensor.always"}, "actuator.shoot", "boat", false, false},
		{"number after comparison", []string{"sensor.score", "filter.above"}, "filter.number.5", "bot", false, true},
		{"number needs comparison", []string{"sensor.score"}, "filter.number.5", "bot", false, false},
		{"one comparison per rule", []string{"sensor.see", "filter.above"}, "filter.below", "bot", false, false},
		{"direction refuses wander", []string{"sensor.always", "actuator.move", "selector.wander"}, "modifier.north", "bot", false, false},
		{"path color after path", []string{"sensor.always", "actuator.move", "selector.path"}, "modifier.path.red", "bot", false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := rule(t, tt.rule...)
			c := candidate(t, tt.candidate)
			if got := brain.IsCompatible(c, tt.actor, r, nil, tt.archived); got != tt.want {
				t.Errorf("IsCompatible(%s) = %v, want %v", tt.candidate, got, tt.want)
			}
		})
	}
}

func candidate(t *testing.T, id string) *brain.Prototype {
	t.Helper()
	for role := brain.RoleSensor; role < brain.NumRoles; role++ {
		if p := brain.Lookup(testReg, role, id); p != nil {
			return p
		}
	}
	t.Fatalf("tile %q not in catalog", id)
	return nil
}

func TestRegistryCompatibleList(t *testing.T) {
	r := rule(t, "sensor.see", "actuator.move")
	var ids []string
	for _, p := range testReg.Compatible(brain.RoleSelector, "bot", r, false) {
		ids = append(ids, p.ID)
	}
	for _, want := range []string{"selector.toward", "selector.circle", "selector.wander"} {
		if !slices.Contains(ids, want) {
			t.Errorf("%s missing from %v", want, ids)
		}
	}
	for _, bad := range []string{brain.HiddenSelectorAuto, "selector.turn.left"} {
		if slices.Contains(ids, bad) {
			t.Errorf("%s should not be offered", bad)
		}
	}
}

func TestHiddenDefaults(t *testing.T) {
	tests := []struct {
		name     string
		rule     []string
		selector string
		filter   string
	}{
		{"gamepad drives by stick", []string{"sensor.gamepad", "actuator.move"}, brain.HiddenSelectorGamePad, "filter.stick.default"},
		{"button cancels stick direction", []string{"sensor.gamepad", "filter.button.a", "actuator.move"}, brain.HiddenSelectorAuto, ""},
		{"see wanders or chases", []string{"sensor.see", "actuator.move"}, brain.HiddenSelectorAuto, ""},
		{"pointer clicks", []string{"sensor.pointer", "actuator.move"}, brain.HiddenSelectorAuto, "filter.pointer.default"},
		{"verbs need no selector", []string{"sensor.timer", "actuator.say"}, "", "filter.timer.default"},
		{"explicit selector wins", []string{"sensor.see", "actuator.move", "selector.away"}, "selector.away", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := rule(t, tt.rule...)
			brain.NewTask(testReg, r)

			sel := ""
			if s := r.EffectiveSelector(); s != nil {
				sel = s.Proto().ID
			}
			if sel != tt.selector {
				t.Errorf("selector = %q, want %q", sel, tt.selector)
			}
			flt := ""
			if f := r.HiddenFilter(); f != nil {
				flt = f.Proto().ID
			}
			if flt != tt.filter {
				t.Errorf("hidden filter = %q, want %q", flt, tt.filter)
			}
		})
	}
}
