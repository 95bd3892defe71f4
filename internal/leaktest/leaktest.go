// Copyright 2025 The sharedptr Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package leaktest detects managed objects that out-live the test which
// created them.
package leaktest

import (
	"fmt"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/theodor96/shared-ptr/internal/ledger"
	"github.com/theodor96/shared-ptr/internal/xunsafe"
)

// Report describes targets that were still registered with the global ledger
// when their test finished.
type Report struct {
	Leaked  int     `yaml:"leaked"`
	Targets []Entry `yaml:"targets,omitempty"`
}

// Entry is a single leaked target.
type Entry struct {
	Target string `yaml:"target"`
	Count  int64  `yaml:"count"`
}

// Check fails t at cleanup time if any of targets is still registered with
// the global ledger.
//
// Targets are keyed by identity, so this is safe under test parallelism:
// other tests' registrations never trip it.
func Check(t *testing.T, targets ...any) {
	t.Helper()

	t.Cleanup(func() {
		report := build(targets)
		if report.Leaked == 0 {
			return
		}

		out, err := yaml.Marshal(report)
		if err != nil {
			t.Fatalf("leaktest: rendering report: %v", err)
		}
		t.Errorf("leaktest: %d target(s) still registered:\n%s", report.Leaked, out)
	})
}

func build(targets []any) Report {
	var report Report
	for _, target := range targets {
		p := xunsafe.AnyData(target)
		n := ledger.Global().Count(p)
		if n == 0 {
			continue
		}

		report.Leaked++
		report.Targets = append(report.Targets, Entry{
			Target: fmt.Sprintf("%T(%p)", target, p),
			Count:  int64(n),
		})
	}
	return report
}
