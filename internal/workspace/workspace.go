/*
 * Copyright (c) 2025 The taikou5dxls Authors. All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package workspace holds the documents the client has opened.
package workspace

import (
	"io/fs"
	"maps"
	"sync"
	"sync/atomic"

	"github.com/tarot-shogun/taikou5dxls/completion"
	"github.com/tarot-shogun/taikou5dxls/host"
	"golang.org/x/sync/singleflight"
)

// File represents an open document.
type File struct {
	Content    []byte
	LanguageID string
	Version    int32
}

// Workspace represents the set of open documents, keyed by URI.
type Workspace struct {
	mu            sync.RWMutex
	files         map[string]*File
	filesSnapshot atomic.Pointer[map[string]*File] // Immutable snapshot for lock-free counting.

	documents   map[string]*completion.Document
	documentSFG singleflight.Group
}

// New creates an empty workspace.
func New() *Workspace {
	ws := &Workspace{
		files:     make(map[string]*File),
		documents: make(map[string]*completion.Document),
	}
	ws.updateFilesSnapshot()
	return ws
}

// Len returns the number of open documents.
func (ws *Workspace) Len() int {
	return len(*ws.filesSnapshot.Load())
}

// File gets a file from the workspace.
func (ws *Workspace) File(uri string) (file *File, ok bool) {
	ws.mu.RLock()
	defer ws.mu.RUnlock()
	file, ok = ws.files[uri]
	return
}

// PutFile puts a file into the workspace.
func (ws *Workspace) PutFile(uri string, file *File) {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	ws.files[uri] = file
	ws.updateFilesSnapshot()
	delete(ws.documents, uri)
}

// DeleteFile deletes a file from the workspace.
func (ws *Workspace) DeleteFile(uri string) error {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	if _, ok := ws.files[uri]; ok {
		delete(ws.files, uri)
		ws.updateFilesSnapshot()
		delete(ws.documents, uri)
		return nil
	}
	return fs.ErrNotExist
}

// Document returns the completion view of the file at uri. It is built once
// per file version.
func (ws *Workspace) Document(uri string) (*completion.Document, error) {
	ws.mu.RLock()
	doc, ok := ws.documents[uri]
	ws.mu.RUnlock()
	if ok {
		return doc, nil
	}

	v, err, _ := ws.documentSFG.Do(uri, func() (any, error) {
		ws.mu.RLock()
		file, ok := ws.files[uri]
		ws.mu.RUnlock()
		if !ok {
			return nil, fs.ErrNotExist
		}

		doc := &completion.Document{
			URI:        uri,
			LanguageID: file.LanguageID,
			Version:    file.Version,
			Text:       string(file.Content),
		}

		ws.mu.Lock()
		// The file may have changed while building.
		if ws.files[uri] == file {
			ws.documents[uri] = doc
		}
		ws.mu.Unlock()

		return doc, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*completion.Document), nil
}

// DocumentInfo returns what provider selectors match against for uri.
func (ws *Workspace) DocumentInfo(uri string) (host.DocumentInfo, bool) {
	file, ok := ws.File(uri)
	if !ok {
		return host.DocumentInfo{}, false
	}
	return host.DocumentInfo{URI: uri, LanguageID: file.LanguageID}, true
}

// Clear removes every file from the workspace.
func (ws *Workspace) Clear() {
	ws.mu.Lock()
	defer ws.mu.Unlock()
	clear(ws.files)
	clear(ws.documents)
	ws.updateFilesSnapshot()
}

// updateFilesSnapshot updates the atomic snapshot of files.
func (ws *Workspace) updateFilesSnapshot() {
	snapshot := maps.Clone(ws.files)
	ws.filesSnapshot.Store(&snapshot)
}
