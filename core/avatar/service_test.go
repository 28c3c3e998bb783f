package avatar_test

import (
	"context"
	"reflect"
	"testing"

	"github.com/studify/backend/core"
	"github.com/studify/backend/core/avatar"
	dummydb "github.com/studify/backend/storage/database/dummy"
)

func setup(t *testing.T) *avatar.Service {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed, %v", err)
	}
	return avatar.NewService(dummydb.NewAvatarRepository(db))
}

func TestService_Get_defaultsWhenUnsaved(t *testing.T) {
	svc := setup(t)

	profile, err := svc.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Get() failed, %v", err)
	}
	if !reflect.DeepEqual(profile, avatar.DefaultProfile()) {
		t.Errorf("Get() = %+v; want %+v", profile, avatar.DefaultProfile())
	}
}

func TestService_Save(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	profile := avatar.DefaultProfile()
	profile.BaseColor = "blue"
	profile.Accessories = []string{"glasses", "hat"}

	if err := svc.Save(ctx, "u1", profile); err != nil {
		t.Fatalf("Save() failed, %v", err)
	}
	saved, err := svc.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() failed, %v", err)
	}
	if !reflect.DeepEqual(saved, profile) {
		t.Errorf("Get() = %+v; want %+v", saved, profile)
	}
}

func TestService_Save_rejectsUnownedAccessory(t *testing.T) {
	svc := setup(t)

	profile := avatar.DefaultProfile()
	profile.Accessories = []string{"crown"} // never granted

	err := svc.Save(context.Background(), "u1", profile)
	if err == nil {
		t.Fatal("Save() expected a validation error")
	}
	vErr, ok := err.(*core.ValidationError)
	if !ok {
		t.Fatalf("Save() error = %v; want *core.ValidationError", err)
	}
	if len(vErr.Fields) != 1 || vErr.Fields[0].Field != "accessories" {
		t.Errorf("vErr.Fields = %+v; want one error on 'accessories'", vErr.Fields)
	}
}

func TestService_Grant(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	profile, err := svc.Grant(ctx, "u1", "crown")
	if err != nil {
		t.Fatalf("Grant() failed, %v", err)
	}
	if !profile.Owns("crown") {
		t.Errorf("profile.Owned = %v; want it to include 'crown'", profile.Owned)
	}

	// granting again is a no-op
	again, err := svc.Grant(ctx, "u1", "crown")
	if err != nil {
		t.Fatalf("Grant() failed, %v", err)
	}
	if !reflect.DeepEqual(again.Owned, profile.Owned) {
		t.Errorf("Owned after regrant = %v; want %v", again.Owned, profile.Owned)
	}
}

func TestService_Revoke(t *testing.T) {
	ctx := context.Background()
	svc := setup(t)

	if _, err := svc.Grant(ctx, "u1", "crown"); err != nil {
		t.Fatalf("Grant() failed, %v", err)
	}
	profile, err := svc.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get() failed, %v", err)
	}
	profile.Accessories = []string{"crown"}
	if err = svc.Save(ctx, "u1", profile); err != nil {
		t.Fatalf("Save() failed, %v", err)
	}

	profile, err = svc.Revoke(ctx, "u1", "crown")
	if err != nil {
		t.Fatalf("Revoke() failed, %v", err)
	}
	if profile.Owns("crown") {
		t.Errorf("profile.Owned = %v; 'crown' not revoked", profile.Owned)
	}
	if profile.HasEquipped("crown") {
		t.Errorf("profile.Accessories = %v; 'crown' still equipped", profile.Accessories)
	}
}
