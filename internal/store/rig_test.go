package store

import (
	"errors"
	"testing"
)

func TestRigRepository_CRUD(t *testing.T) {
	s := newTestStore(t)
	repo := s.Rigs()

	rig := &Rig{
		ID:     "rig-1",
		Name:   "mixamo-ybot",
		Format: RigFormatBVH,
		Data:   "HIERARCHY\nROOT Hips\n{\n}\nMOTION\n",
	}
	if err := repo.Create(rig); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	got, err := repo.GetByID("rig-1")
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if got.Name != "mixamo-ybot" || got.Format != RigFormatBVH {
		t.Errorf("GetByID() = %+v", got)
	}

	byName, err := repo.GetByName("mixamo-ybot")
	if err != nil {
		t.Fatalf("GetByName() failed: %v", err)
	}
	if byName.ID != "rig-1" {
		t.Errorf("GetByName() ID = %q", byName.ID)
	}

	if err := repo.Create(&Rig{ID: "rig-2", Name: "builtin", Format: RigFormatBuiltin, Data: "humanoid"}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	rigs, err := repo.List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(rigs) != 2 {
		t.Errorf("List() returned %d rigs, want 2", len(rigs))
	}

	if err := repo.Delete("rig-1"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, err := repo.GetByID("rig-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID(deleted) error = %v, want ErrNotFound", err)
	}
	if err := repo.Delete("rig-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete(missing) error = %v, want ErrNotFound", err)
	}
}

func TestRigRepository_DuplicateNameRejected(t *testing.T) {
	s := newTestStore(t)
	repo := s.Rigs()

	if err := repo.Create(&Rig{ID: "a", Name: "dup", Format: RigFormatBuiltin, Data: "humanoid"}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if err := repo.Create(&Rig{ID: "b", Name: "dup", Format: RigFormatBuiltin, Data: "humanoid"}); err == nil {
		t.Error("duplicate rig name did not fail")
	}
}

func TestRigRepository_Overrides(t *testing.T) {
	s := newTestStore(t)
	repo := s.Rigs()

	if err := repo.Create(&Rig{ID: "rig-1", Name: "ybot", Format: RigFormatBuiltin, Data: "humanoid"}); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	overrides := map[string]string{
		"head":           "HeadTop",
		"left-upper-arm": "UpperArm.L",
	}
	if err := repo.SetOverrides("rig-1", overrides); err != nil {
		t.Fatalf("SetOverrides() failed: %v", err)
	}

	got, err := repo.GetOverrides("rig-1")
	if err != nil {
		t.Fatalf("GetOverrides() failed: %v", err)
	}
	if len(got) != 2 || got["head"] != "HeadTop" {
		t.Errorf("GetOverrides() = %v", got)
	}

	// Replacing drops the old set
	if err := repo.SetOverrides("rig-1", map[string]string{"head": "Skull"}); err != nil {
		t.Fatalf("SetOverrides() replace failed: %v", err)
	}
	got, err = repo.GetOverrides("rig-1")
	if err != nil {
		t.Fatalf("GetOverrides() failed: %v", err)
	}
	if len(got) != 1 || got["head"] != "Skull" {
		t.Errorf("GetOverrides() after replace = %v", got)
	}

	// Deleting the rig cascades to the overrides
	if err := repo.Delete("rig-1"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	got, err = repo.GetOverrides("rig-1")
	if err != nil {
		t.Fatalf("GetOverrides() after delete failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("overrides survived rig deletion: %v", got)
	}
}

func TestTuningRepository_CRUD(t *testing.T) {
	s := newTestStore(t)
	repo := s.Tunings()

	p := &TuningProfile{
		ID:   "prof-1",
		Name: "stage",
		Data: `{"limbAlpha":0.4}`,
	}
	if err := repo.Create(p); err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	got, err := repo.GetByID("prof-1")
	if err != nil {
		t.Fatalf("GetByID() failed: %v", err)
	}
	if got.Name != "stage" || got.Data != `{"limbAlpha":0.4}` {
		t.Errorf("GetByID() = %+v", got)
	}

	got.Name = "stage-fast"
	got.Data = `{"limbAlpha":0.6}`
	if err := repo.Update(got); err != nil {
		t.Fatalf("Update() failed: %v", err)
	}

	profiles, err := repo.List()
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(profiles) != 1 || profiles[0].Name != "stage-fast" {
		t.Errorf("List() = %+v", profiles)
	}

	if err := repo.Delete("prof-1"); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if err := repo.Update(got); !errors.Is(err, ErrNotFound) {
		t.Errorf("Update(deleted) error = %v, want ErrNotFound", err)
	}
}
