// Copyright (C) 2019-2025 Algorand, Inc.
// This file is part of go-algorand
//
// go-algorand is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// go-algorand is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with go-algorand.  If not, see <https://www.gnu.org/licenses/>.

package logic

import (
	"fmt"
	"sort"

	"github.com/algorand/go-deadlock"
)

// Program is the executable form of an application. Approval runs for every
// call except ClearState, which runs ClearState. A nil error approves.
type Program struct {
	Approval   func(cx ExecutionContext) error
	ClearState func(cx ExecutionContext) error
}

var registry = struct {
	mu       deadlock.RWMutex
	programs map[string]Program
}{programs: make(map[string]Program)}

// Register makes a program available under name. Names are permanent.
func Register(name string, p Program) error {
	if name == "" {
		return fmt.Errorf("program name cannot be empty")
	}
	if p.Approval == nil || p.ClearState == nil {
		return fmt.Errorf("program %q must define both approval and clear state", name)
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()
	if _, ok := registry.programs[name]; ok {
		return fmt.Errorf("program %q already registered", name)
	}
	registry.programs[name] = p
	return nil
}

// LookupProgram returns the program registered under name.
func LookupProgram(name string) (Program, bool) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	p, ok := registry.programs[name]
	return p, ok
}

// RegisteredPrograms lists the names of every registered program, sorted.
func RegisteredPrograms() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()
	names := make([]string, 0, len(registry.programs))
	for name := range registry.programs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// approveAlways is a ClearState that never rejects.
func approveAlways(ExecutionContext) error {
	return nil
}
