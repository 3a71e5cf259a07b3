// Copyright (c) 2024, Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build debug

package errors

// Debug is whether to include call stacks in error strings.
var Debug = true

// Asserts is whether [Assert] checks its condition.
const Asserts = true
