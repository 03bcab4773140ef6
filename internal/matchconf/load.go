package matchconf

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/0x4d31/matcherd/internal/matcherr"
)

const filterFileName = "filter.json"

// rawNode is the unvalidated, uncompiled tree read directly off disk.
type rawNode struct {
	dirPath string
	name    string
	kind    NodeKind

	filter FilterFileJSON

	children  []*rawNode   // NodeFilter
	ruleFiles []ruleSource // NodeRuleset
}

type ruleSource struct {
	fileName string
	rule     RuleFileJSON
}

// LoadDir reads the configuration directory tree rooted at dirPath.
// Every directory is a filter node; a leaf directory (no
// subdirectories) whose *.json files (other than filter.json) define
// rules is additionally given one synthetic Ruleset child wrapping those
// rule files, since Ruleset is a distinct leaf variant in the compiled
// model.
func LoadDir(dirPath string) (*rawNode, error) {
	return loadNode(dirPath)
}

func loadNode(dirPath string) (*rawNode, error) {
	entries, err := os.ReadDir(dirPath)
	if err != nil {
		return nil, &matcherr.JsonDeserializationError{File: dirPath, Cause: err}
	}

	var filterDef FilterFileJSON
	hasFilterFile := false
	var subdirs []os.DirEntry
	var ruleFiles []ruleSource

	for _, entry := range entries {
		if entry.IsDir() {
			subdirs = append(subdirs, entry)
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		if name == filterFileName {
			data, err := os.ReadFile(filepath.Join(dirPath, name))
			if err != nil {
				return nil, &matcherr.JsonDeserializationError{File: filepath.Join(dirPath, name), Cause: err}
			}
			if err := json.Unmarshal(data, &filterDef); err != nil {
				return nil, &matcherr.JsonDeserializationError{File: filepath.Join(dirPath, name), Cause: err}
			}
			hasFilterFile = true
			continue
		}
		data, err := os.ReadFile(filepath.Join(dirPath, name))
		if err != nil {
			return nil, &matcherr.JsonDeserializationError{File: filepath.Join(dirPath, name), Cause: err}
		}
		var rule RuleFileJSON
		if err := json.Unmarshal(data, &rule); err != nil {
			return nil, &matcherr.JsonDeserializationError{File: filepath.Join(dirPath, name), Cause: err}
		}
		fileName := strings.TrimSuffix(name, ".json")
		if rule.Name != "" && rule.Name != fileName {
			return nil, &matcherr.JsonDeserializationError{
				File:  filepath.Join(dirPath, name),
				Cause: fmt.Errorf("rule name %q does not match file name %q", rule.Name, fileName),
			}
		}
		if rule.Name == "" {
			rule.Name = fileName
		}
		ruleFiles = append(ruleFiles, ruleSource{fileName: fileName, rule: rule})
	}

	sort.Slice(ruleFiles, func(i, j int) bool { return ruleFiles[i].fileName < ruleFiles[j].fileName })
	sort.Slice(subdirs, func(i, j int) bool { return subdirs[i].Name() < subdirs[j].Name() })

	if !hasFilterFile {
		filterDef = FilterFileJSON{}
	}

	base := filepath.Base(dirPath)
	name := filterDef.Name
	if name == "" {
		name = base
	}

	n := &rawNode{dirPath: dirPath, name: name, filter: filterDef}

	if len(subdirs) == 0 {
		n.kind = NodeFilter
		n.filter.Name = name
		if len(ruleFiles) > 0 {
			n.children = []*rawNode{{
				dirPath:   dirPath,
				name:      name,
				kind:      NodeRuleset,
				ruleFiles: ruleFiles,
			}}
		}
		return n, nil
	}

	if len(ruleFiles) > 0 {
		return nil, &matcherr.JsonDeserializationError{
			File:  dirPath,
			Cause: fmt.Errorf("directory %q mixes subdirectories and rule files; a filter node with children must not also contain rule files directly", dirPath),
		}
	}

	n.kind = NodeFilter
	n.filter.Name = name
	for _, sub := range subdirs {
		child, err := loadNode(filepath.Join(dirPath, sub.Name()))
		if err != nil {
			return nil, err
		}
		n.children = append(n.children, child)
	}
	return n, nil
}
