package config

import "testing"

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != "8080" {
		t.Errorf("port = %s, want 8080", cfg.Server.Port)
	}
	if cfg.Assessment.Alpha != 0.05 {
		t.Errorf("alpha = %f, want 0.05", cfg.Assessment.Alpha)
	}
	if cfg.Assessment.Tolerance != 1e-9 {
		t.Errorf("tolerance = %g, want 1e-9", cfg.Assessment.Tolerance)
	}
	if cfg.Assessment.MaxIterations != 100 {
		t.Errorf("max iterations = %d, want 100", cfg.Assessment.MaxIterations)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MCR_ALPHA", "0.1")
	t.Setenv("MCR_MAX_ITERATIONS", "50")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Errorf("port = %s, want 9090", cfg.Server.Port)
	}
	if cfg.Assessment.Alpha != 0.1 {
		t.Errorf("alpha = %f, want 0.1", cfg.Assessment.Alpha)
	}
	if cfg.Assessment.MaxIterations != 50 {
		t.Errorf("max iterations = %d, want 50", cfg.Assessment.MaxIterations)
	}
}

func TestDatabaseDSN(t *testing.T) {
	cases := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{"empty url", DatabaseConfig{URL: "", SSLMode: "disable"}, ""},
		{
			"sslmode appended",
			DatabaseConfig{URL: "postgres://localhost/godisso", SSLMode: "disable"},
			"postgres://localhost/godisso?sslmode=disable",
		},
		{
			"existing query string",
			DatabaseConfig{URL: "postgres://localhost/godisso?application_name=cli", SSLMode: "require"},
			"postgres://localhost/godisso?application_name=cli&sslmode=require",
		},
		{
			"url pins its own sslmode",
			DatabaseConfig{URL: "postgres://localhost/godisso?sslmode=verify-full", SSLMode: "disable"},
			"postgres://localhost/godisso?sslmode=verify-full",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cfg.DSN(); got != tc.want {
				t.Errorf("DSN() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLoad_RejectsBadAlpha(t *testing.T) {
	t.Setenv("MCR_ALPHA", "1.5")
	if _, err := Load(); err == nil {
		t.Error("expected validation error for alpha outside (0,1)")
	}
}
