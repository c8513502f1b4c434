package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "8080" {
		t.Errorf("Port = %s, expected 8080", cfg.Port)
	}
	if cfg.RouteID != "61-4158" {
		t.Errorf("RouteID = %s, expected 61-4158", cfg.RouteID)
	}
	if cfg.Timezone != "Australia/Brisbane" {
		t.Errorf("Timezone = %s", cfg.Timezone)
	}
	if cfg.MinDistanceMeters != 100 {
		t.Errorf("MinDistanceMeters = %v, expected 100", cfg.MinDistanceMeters)
	}
	if cfg.AcceptableDelay != 60*time.Second {
		t.Errorf("AcceptableDelay = %v, expected 60s", cfg.AcceptableDelay)
	}
	if cfg.TokenTTL != 15*time.Minute {
		t.Errorf("TokenTTL = %v, expected 15m", cfg.TokenTTL)
	}
	if !cfg.ProximityStrict() {
		t.Error("proximity gate not strict by default")
	}
	if cfg.TokenSingleUse {
		t.Error("tokens single-use by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("PROXIMITY_MODE", "advisory")
	t.Setenv("MIN_DISTANCE", "250.5")
	t.Setenv("ACCEPTABLE_DELAY", "120")
	t.Setenv("TOKEN_SINGLE_USE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Port != "9090" {
		t.Errorf("Port = %s, expected 9090", cfg.Port)
	}
	if cfg.ProximityStrict() {
		t.Error("proximity gate strict despite advisory override")
	}
	if cfg.MinDistanceMeters != 250.5 {
		t.Errorf("MinDistanceMeters = %v, expected 250.5", cfg.MinDistanceMeters)
	}
	if cfg.AcceptableDelay != 120*time.Second {
		t.Errorf("AcceptableDelay = %v, expected 120s", cfg.AcceptableDelay)
	}
	if !cfg.TokenSingleUse {
		t.Error("TOKEN_SINGLE_USE=true ignored")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Run("bad proximity mode", func(t *testing.T) {
		t.Setenv("PROXIMITY_MODE", "lenient")
		if _, err := Load(); err == nil {
			t.Error("Load accepted an unknown proximity mode")
		}
	})

	t.Run("bad feed url", func(t *testing.T) {
		t.Setenv("GTFS_RT_URL", "not a url")
		if _, err := Load(); err == nil {
			t.Error("Load accepted a malformed feed URL")
		}
	})

	t.Run("non-positive distance", func(t *testing.T) {
		t.Setenv("MIN_DISTANCE", "0")
		if _, err := Load(); err == nil {
			t.Error("Load accepted a zero acceptance radius")
		}
	})

	t.Run("unparsable int falls back to default", func(t *testing.T) {
		t.Setenv("ACCEPTABLE_DELAY", "soon")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.AcceptableDelay != 60*time.Second {
			t.Errorf("AcceptableDelay = %v, expected the default", cfg.AcceptableDelay)
		}
	})
}
