package importer

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Folder is one directory slated for import processing.
type Folder struct {
	Path  string
	Depth int // 0 is the import root itself
	Files int // direct (non-recursive) file count
}

// ScanOptions bounds the traversal.
type ScanOptions struct {
	MaxDepth         int
	MaxSubfolders    int // cap on top-level subfolders, 0 means unlimited
	ProcessRootFiles bool
}

// ScanFolders enumerates the tree under root and returns folders in
// processing order: deepest first, ties broken by path, so every descendant
// is handled before its parent. When MaxSubfolders is set, only the first N
// top-level subfolders in lexicographic order are considered; their subtrees
// are excluded wholesale. The root itself appears last, and only when
// ProcessRootFiles is set.
func ScanFolders(root string, opts ScanOptions) ([]Folder, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("stat import folder: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("import folder is not a directory: %s", root)
	}

	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = 10
	}

	tops, rootFiles, err := listDir(root)
	if err != nil {
		return nil, fmt.Errorf("read import folder: %w", err)
	}
	sort.Strings(tops)
	if opts.MaxSubfolders > 0 && len(tops) > opts.MaxSubfolders {
		tops = tops[:opts.MaxSubfolders]
	}

	// Explicit stack instead of recursion so depth is bounded by
	// configuration, not by the shape of the tree.
	type frame struct {
		path  string
		depth int
	}
	stack := make([]frame, 0, len(tops))
	for i := len(tops) - 1; i >= 0; i-- {
		stack = append(stack, frame{path: filepath.Join(root, tops[i]), depth: 1})
	}

	var folders []Folder
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		subdirs, files, err := listDir(top.path)
		if err != nil {
			// Unreadable subtrees are skipped, not fatal; the folder itself
			// is still recorded so the manager can report on it.
			folders = append(folders, Folder{Path: top.path, Depth: top.depth, Files: 0})
			continue
		}
		folders = append(folders, Folder{Path: top.path, Depth: top.depth, Files: files})

		if top.depth >= maxDepth {
			continue
		}
		sort.Strings(subdirs)
		for i := len(subdirs) - 1; i >= 0; i-- {
			stack = append(stack, frame{path: filepath.Join(top.path, subdirs[i]), depth: top.depth + 1})
		}
	}

	sort.Slice(folders, func(i, j int) bool {
		if folders[i].Depth != folders[j].Depth {
			return folders[i].Depth > folders[j].Depth
		}
		return folders[i].Path < folders[j].Path
	})

	if opts.ProcessRootFiles {
		folders = append(folders, Folder{Path: root, Depth: 0, Files: rootFiles})
	}
	return folders, nil
}

func listDir(path string) (subdirs []string, files int, err error) {
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, 0, err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			subdirs = append(subdirs, entry.Name())
			continue
		}
		files++
	}
	return subdirs, files, nil
}
