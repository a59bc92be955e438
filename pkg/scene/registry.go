package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/df07/go-weekend-raytracer/pkg/core"
)

// ErrUnknownScene is returned when a scene name is neither built in nor a scene file
var ErrUnknownScene = errors.New("unknown scene")

// jsonPrefix marks scene IDs that refer to files in the scenes directory
const jsonPrefix = "json:"

// SceneInfo represents a discovered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	Name        string `json:"name"`        // Scene name
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
	Type        string `json:"type"`        // "builtin" or "json"
	FilePath    string `json:"filePath"`    // Path to the scene file (json type only)
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

const builtinGroup = "Built-in Scenes"

var builtinScenes = []SceneInfo{
	{
		ID:          "default",
		Name:        "Default Scene",
		DisplayName: "Default Scene",
		Description: "Diffuse, hollow glass and gold spheres on a yellow ground",
		Group:       builtinGroup,
		Type:        "builtin",
	},
	{
		ID:          "three-spheres",
		Name:        "Three Spheres",
		DisplayName: "Three Spheres",
		Description: "Glass and metal spheres on a diffuse plane",
		Group:       builtinGroup,
		Type:        "builtin",
	},
	{
		ID:          "random",
		Name:        "Random Spheres",
		DisplayName: "Random Spheres",
		Description: "Seeded field of small spheres around three large ones",
		Group:       builtinGroup,
		Type:        "builtin",
	},
}

// Names returns the IDs of the built-in scenes
func Names() []string {
	names := make([]string, len(builtinScenes))
	for i, info := range builtinScenes {
		names[i] = info.ID
	}
	return names
}

// New creates the scene called name. Built-in names, "json:<name>" IDs from the
// scenes directory and paths to .json files are accepted. seed lays out the
// random scene.
func New(name string, seed int64) (*Scene, error) {
	switch name {
	case "default":
		return NewDefaultScene()
	case "three-spheres":
		return NewThreeSphereScene()
	case "random":
		return NewRandomScene(seed)
	}

	if id, ok := strings.CutPrefix(name, jsonPrefix); ok {
		dir := findScenesDir()
		if dir == "" || id == "" || strings.ContainsAny(id, `/\`) {
			return nil, fmt.Errorf("%q: %w", name, ErrUnknownScene)
		}
		return Load(filepath.Join(dir, id+".json"))
	}
	if strings.EqualFold(filepath.Ext(name), ".json") {
		return Load(name)
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownScene)
}

// findScenesDir returns the first scenes directory that exists, or ""
func findScenesDir() string {
	// Try different possible paths for scenes directory
	for _, path := range []string{"scenes", "../scenes"} {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return path
		}
	}
	return ""
}

// ListJSONScenes scans the scenes directory and returns discovered scene files
func ListJSONScenes() ([]SceneInfo, error) {
	dir := findScenesDir()
	if dir == "" {
		// No scenes directory found, return empty list
		return []SceneInfo{}, nil
	}
	return listJSONScenesIn(dir)
}

func listJSONScenesIn(dir string) ([]SceneInfo, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("scan scenes directory: %w", err)
	}

	scenes := []SceneInfo{}
	for _, filePath := range files {
		sceneInfo, err := ParseJSONMetadata(filePath)
		if err != nil {
			// Skip the file but keep processing the others
			core.Logger().Warn("skipping scene file", slog.String("path", filePath), slog.Any("error", err))
			continue
		}
		scenes = append(scenes, sceneInfo)
	}

	// Sort scenes by display name
	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})

	return scenes, nil
}

// ParseJSONMetadata reads the name, description and group of a scene file
// without building the scene
func ParseJSONMetadata(filePath string) (SceneInfo, error) {
	nameWithoutExt := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))

	// Fallback values when the file carries no metadata
	sceneInfo := SceneInfo{
		ID:          jsonPrefix + nameWithoutExt,
		Name:        titleCase(nameWithoutExt),
		DisplayName: titleCase(nameWithoutExt),
		Group:       "Scene Files",
		Type:        "json",
		FilePath:    filePath,
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return sceneInfo, fmt.Errorf("read scene metadata: %w", err)
	}

	var header struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Group       string `json:"group"`
	}
	if err := json.Unmarshal(data, &header); err != nil {
		return sceneInfo, fmt.Errorf("decode scene metadata: %w", err)
	}

	if header.Name != "" {
		sceneInfo.Name = header.Name
		sceneInfo.DisplayName = header.Name
	}
	sceneInfo.Description = header.Description
	if header.Group != "" {
		sceneInfo.Group = header.Group
	}
	return sceneInfo, nil
}

// ListAllScenes returns both built-in scenes and scene files, grouped by category
func ListAllScenes() (ScenesResponse, error) {
	fileScenes, err := ListJSONScenes()
	if err != nil {
		return ScenesResponse{}, fmt.Errorf("list scene files: %w", err)
	}
	return groupScenes(append(append([]SceneInfo{}, builtinScenes...), fileScenes...)), nil
}

// groupScenes orders groups with the built-in scenes first, then alphabetically
func groupScenes(allScenes []SceneInfo) ScenesResponse {
	var response ScenesResponse

	groupMap := make(map[string][]SceneInfo)
	for _, scene := range allScenes {
		groupMap[scene.Group] = append(groupMap[scene.Group], scene)
	}

	var groupNames []string
	for groupName := range groupMap {
		if groupName != builtinGroup {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	if group, exists := groupMap[builtinGroup]; exists {
		response.Groups = append(response.Groups, SceneGroup{Name: builtinGroup, Scenes: group})
	}
	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{Name: groupName, Scenes: groupMap[groupName]})
	}

	return response
}

// titleCase converts a filename-style string to title case
// e.g., "cornell-empty" -> "Cornell Empty"
func titleCase(s string) string {
	s = strings.NewReplacer("-", " ", "_", " ").Replace(s)
	// A Caser is stateful, so each call gets its own
	return cases.Title(language.English).String(strings.Join(strings.Fields(s), " "))
}
