package weapon

import "testing"

type recordingFallback struct {
	seen []AnimEventType
}

func (r *recordingFallback) HandleAnimEvent(_ *Weapon, evt AnimEvent, _ Operator) bool {
	r.seen = append(r.seen, evt.Type)
	return true
}

func TestNPCPistolFire(t *testing.T) {
	w, h, _ := newTestWeapon()
	npc := &fakeOwner{npc: true, enemy: "player_1"}
	w.SetOwner(npc)

	if !w.HandleAnimEvent(AnimEvent{Type: EventWeaponPistolFire}, npc) {
		t.Fatal("pistol fire event not handled")
	}

	if len(h.bullets) != 1 {
		t.Fatalf("bullets = %d, want 1", len(h.bullets))
	}
	b := h.bullets[0]
	if b.Shots != 1 || b.Spread != ConePrecalculated || b.Distance != MaxTraceLength || b.TracerFreq != 2 {
		t.Errorf("bullet = %+v", b)
	}
	if len(h.world) != 1 || h.world[0].Volume != SoundentVolumePistol || h.world[0].Target != "player_1" {
		t.Errorf("world sounds = %+v", h.world)
	}
	if h.countSound(SoundSingleNPC) != 1 {
		t.Errorf("sounds = %v", h.sounds)
	}
	if npc.flashes != 1 {
		t.Errorf("muzzle flashes = %d", npc.flashes)
	}
	if got := w.State().Clip; got != 2 {
		t.Errorf("clip = %d, want 2", got)
	}
}

func TestAnimEventRouting(t *testing.T) {
	tests := []struct {
		name     string
		evt      AnimEventType
		npc      bool
		fallback bool
		want     bool
	}{
		{"player pistol fire ignored", EventWeaponPistolFire, false, false, false},
		{"other event without fallback", EventWeaponThrow, true, false, false},
		{"other event forwarded", EventWeaponMeleeHit, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newFakeHost()
			fb := &recordingFallback{}
			host := h.host()
			if tt.fallback {
				host.Fallback = fb
			}
			w := New(DefaultProperties(), host, 0)
			op := &fakeOwner{npc: tt.npc}
			w.SetOwner(op)

			if got := w.HandleAnimEvent(AnimEvent{Type: tt.evt}, op); got != tt.want {
				t.Errorf("handled = %v, want %v", got, tt.want)
			}
			if len(h.bullets) != 0 {
				t.Error("unexpected bullets")
			}
			if tt.fallback && len(fb.seen) != 1 {
				t.Errorf("fallback saw %v", fb.seen)
			}
		})
	}
}

// TestNPCFrameHooksIgnored tests that frame hooks only simulate players
func TestNPCFrameHooksIgnored(t *testing.T) {
	w, h, o := newTestWeapon()
	o.npc = true

	w.PreFrame(held(1))
	w.PostFrame(held(1))
	if len(h.spawned) != 0 || w.State().Clip != 3 {
		t.Error("npc owner threw through the player path")
	}
}

func TestParseAnimEvent(t *testing.T) {
	tests := map[string]AnimEventType{
		"":                   EventWeaponPistolFire,
		"pistol_fire":        EventWeaponPistolFire,
		"THROW":              EventWeaponThrow,
		"weapon_melee_hit":   EventWeaponMeleeHit,
		"3005":               EventWeaponThrow,
		"weapon_pistol_fire": EventWeaponPistolFire,
	}
	for in, want := range tests {
		got, err := ParseAnimEvent(in)
		if err != nil {
			t.Errorf("ParseAnimEvent(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseAnimEvent(%q) = %v, want %v", in, got, want)
		}
	}
	if _, err := ParseAnimEvent("reload"); err == nil {
		t.Error("ParseAnimEvent(reload) should fail")
	}
}
