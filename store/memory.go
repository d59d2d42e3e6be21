/*
 * memory.go, part of molingest.
 *
 * Copyright 2026 The molingest authors.
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package store

import (
	"context"
	"sync"
)

//Memory keeps the documents in memory. Data is lost when the process exits.
type Memory struct {
	mu    sync.RWMutex
	docs  map[string]map[Kind]map[ID][]byte
	order map[string]map[Kind][]ID
}

//NewMemory returns a Store backed by memory.
func NewMemory() *Store {
	return &Store{&Memory{
		docs:  make(map[string]map[Kind]map[ID][]byte),
		order: make(map[string]map[Kind][]ID),
	}}
}

func (m *Memory) get(ctx context.Context, collection string, kind Kind, id ID) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if err := checkKind(kind); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.docs[collection][kind][id]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), b...), true, nil
}

func (m *Memory) each(ctx context.Context, collection string, kind Kind, fn func(ID, []byte) error) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	m.mu.RLock()
	ids := append([]ID(nil), m.order[collection][kind]...)
	docs := make([][]byte, len(ids))
	for i, id := range ids {
		docs[i] = append([]byte(nil), m.docs[collection][kind][id]...)
	}
	m.mu.RUnlock()
	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(id, docs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) write(ctx context.Context, collection string, docs []doc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	for _, d := range docs {
		if err := checkKind(d.kind); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.docs[collection] == nil {
		m.docs[collection] = make(map[Kind]map[ID][]byte)
		m.order[collection] = make(map[Kind][]ID)
	}
	for _, d := range docs {
		kd := m.docs[collection][d.kind]
		if kd == nil {
			kd = make(map[ID][]byte)
			m.docs[collection][d.kind] = kd
		}
		if _, ok := kd[d.id]; !ok {
			m.order[collection][d.kind] = append(m.order[collection][d.kind], d.id)
		}
		kd[d.id] = append([]byte(nil), d.data...)
	}
	return nil
}

func (m *Memory) reset(ctx context.Context, collection string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, collection)
	delete(m.order, collection)
	return nil
}

func (m *Memory) close() error {
	return nil
}
