package scene

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestTitleCase(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"glass-pair", "Glass Pair"},
		{"mirror_room", "Mirror Room"},
		{"my-custom-scene", "My Custom Scene"},
		{"simple", "Simple"},
		{"UPPER-case", "Upper Case"},
		{"", ""},
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := titleCase(tc.input)
			if result != tc.expected {
				t.Errorf("titleCase(%q) = %q, want %q", tc.input, result, tc.expected)
			}
		})
	}
}

func TestNew(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			s, err := New(name, 1)
			if err != nil {
				t.Fatalf("New(%q): %v", name, err)
			}
			if s.Name != name {
				t.Errorf("Expected scene name %q, got %q", name, s.Name)
			}
		})
	}

	for _, name := range []string{"cornell-box", "", "json:", "json:../secret"} {
		if _, err := New(name, 1); !errors.Is(err, ErrUnknownScene) {
			t.Errorf("New(%q): expected ErrUnknownScene, got %v", name, err)
		}
	}
}

func TestNew_JSONPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.JSON")
	if err := os.WriteFile(path, []byte(`{"materials": {}}`), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	s, err := New(path, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if s.Name != "tiny" {
		t.Errorf("Expected name tiny, got %q", s.Name)
	}
}

func TestListJSONScenesIn(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"glass-pair.json": `{"name": "Glass Pair", "description": "Two glass spheres", "group": "Glass", "materials": {}}`,
		"bare_room.json":  `{"materials": {}}`,
		"broken.json":     `{"name": `,
		"notes.txt":       `not a scene`,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	scenes, err := listJSONScenesIn(dir)
	if err != nil {
		t.Fatalf("listJSONScenesIn: %v", err)
	}
	if len(scenes) != 2 {
		t.Fatalf("Expected 2 scenes, got %d: %+v", len(scenes), scenes)
	}

	// Sorted by display name
	bare, glass := scenes[0], scenes[1]
	if bare.ID != "json:bare_room" || bare.DisplayName != "Bare Room" || bare.Group != "Scene Files" {
		t.Errorf("Unexpected fallback metadata %+v", bare)
	}
	if glass.ID != "json:glass-pair" || glass.Name != "Glass Pair" || glass.Description != "Two glass spheres" || glass.Group != "Glass" {
		t.Errorf("Unexpected metadata %+v", glass)
	}
	if glass.Type != "json" || glass.FilePath != filepath.Join(dir, "glass-pair.json") {
		t.Errorf("Unexpected type or path %+v", glass)
	}
}

func TestGroupScenes(t *testing.T) {
	scenes := append([]SceneInfo{}, builtinScenes...)
	scenes = append(scenes,
		SceneInfo{ID: "json:b", Group: "Zeta"},
		SceneInfo{ID: "json:a", Group: "Alpha"},
		SceneInfo{ID: "json:c", Group: "Alpha"},
	)

	response := groupScenes(scenes)
	if len(response.Groups) != 3 {
		t.Fatalf("Expected 3 groups, got %d", len(response.Groups))
	}

	names := []string{response.Groups[0].Name, response.Groups[1].Name, response.Groups[2].Name}
	expected := []string{"Built-in Scenes", "Alpha", "Zeta"}
	for i := range expected {
		if names[i] != expected[i] {
			t.Errorf("Group %d: expected %q, got %q", i, expected[i], names[i])
		}
	}
	if len(response.Groups[0].Scenes) != len(builtinScenes) {
		t.Errorf("Expected %d built-in scenes, got %d", len(builtinScenes), len(response.Groups[0].Scenes))
	}
	if len(response.Groups[1].Scenes) != 2 {
		t.Errorf("Expected 2 scenes in Alpha, got %d", len(response.Groups[1].Scenes))
	}
}

func TestListAllScenes_NoScenesDir(t *testing.T) {
	// The package directory has no scenes folder, so only built-ins are listed
	response, err := ListAllScenes()
	if err != nil {
		t.Fatalf("ListAllScenes: %v", err)
	}
	if len(response.Groups) == 0 || response.Groups[0].Name != "Built-in Scenes" {
		t.Fatalf("Expected built-in scenes first, got %+v", response.Groups)
	}
}
