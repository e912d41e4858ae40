package registry

import (
	"testing"
	"time"
)

func TestValidateTag(t *testing.T) {
	valid := []string{
		"myimage",
		"myimage:latest",
		"myorg/myimage:v1.2.3",
		"registry.example.com:5000/myorg/myimage:20260731-142301",
	}
	for _, ref := range valid {
		if err := ValidateTag(ref); err != nil {
			t.Errorf("expected %q to be valid, got %s", ref, err)
		}
	}

	invalid := []string{
		"",
		"MyImage",
		"myorg//myimage",
		"myimage:-bad",
		"myimage:_bad",
		"myimage:Abad",
	}
	for _, ref := range invalid {
		if err := ValidateTag(ref); err == nil {
			t.Errorf("expected %q to be invalid", ref)
		}
	}
}

func TestSanitizeTagComponent(t *testing.T) {
	tests := map[string]string{
		"Feature/My Branch!": "feature-my-branch",
		"already-valid_tag":  "already-valid_tag",
		"!!!":                "latest",
		"_leading-underscore": "x_leading-underscore",
	}
	for in, want := range tests {
		got := SanitizeTagComponent(in)
		if got != want {
			t.Errorf("SanitizeTagComponent(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTimestampTag(t *testing.T) {
	ts := time.Date(2026, 7, 31, 14, 23, 1, 0, time.UTC)
	got := TimestampTag(ts)
	want := "20260731-142301"
	if got != want {
		t.Errorf("TimestampTag() = %q, want %q", got, want)
	}
}

func TestRegistryHost(t *testing.T) {
	tests := map[string]string{
		"myimage:latest":                            "docker.io",
		"myorg/myimage":                              "docker.io",
		"registry.example.com/myorg/myimage":         "registry.example.com",
		"localhost:5000/myimage":                     "localhost:5000",
		"registry.example.com:5000/myorg/myimage:v1": "registry.example.com:5000",
	}
	for ref, want := range tests {
		got := RegistryHost(ref)
		if got != want {
			t.Errorf("RegistryHost(%q) = %q, want %q", ref, got, want)
		}
	}
}

func TestAuthFromEnvMissingCredentials(t *testing.T) {
	t.Setenv("REGISTRY_AUTH_USERNAME", "")
	t.Setenv("REGISTRY_AUTH_EXAMPLE_COM_USERNAME", "")
	if _, err := AuthFromEnv("example.com"); err == nil {
		t.Fatal("expected an error when no credentials are set")
	}
}

func TestAuthFromEnvReadsHostScopedVars(t *testing.T) {
	t.Setenv("REGISTRY_AUTH_REGISTRY_EXAMPLE_COM_USERNAME", "alice")
	t.Setenv("REGISTRY_AUTH_REGISTRY_EXAMPLE_COM_PASSWORD", "secret")

	auth, err := AuthFromEnv("registry.example.com")
	if err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	if auth.Username != "alice" || auth.Password != "secret" {
		t.Fatalf("unexpected auth: %+v", auth)
	}
}
