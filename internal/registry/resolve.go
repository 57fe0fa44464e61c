package registry

import (
	"fmt"
	"path/filepath"
	"strings"

	"promptd/internal/common/fsutil"
	"promptd/internal/prompt"
	"promptd/pkg/types"
)

// ResolveModel turns a configured model path into Model metadata: the ID is
// the filename, the path is made absolute with '~' expanded, and the family
// is guessed from the filename so the template default follows the model.
func ResolveModel(path string) (types.Model, error) {
	p := strings.TrimSpace(path)
	if p == "" {
		return types.Model{}, fmt.Errorf("model path is empty")
	}
	expanded, err := fsutil.ExpandHome(p)
	if err != nil {
		return types.Model{}, err
	}
	abs, err := filepath.Abs(expanded)
	if err != nil {
		return types.Model{}, fmt.Errorf("abs path: %w", err)
	}
	name := filepath.Base(abs)
	if !strings.HasSuffix(strings.ToLower(name), ".gguf") {
		return types.Model{}, fmt.Errorf("model file must be a .gguf: %s", name)
	}
	if !fsutil.PathExists(abs) {
		return types.Model{}, fmt.Errorf("model file not found: %s", abs)
	}
	return types.Model{
		ID:     name,
		Name:   name,
		Path:   abs,
		Family: string(prompt.DetectFamily(name)),
	}, nil
}
