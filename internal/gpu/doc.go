// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpu composites the engine's raster layers on a host-shared
// wgpu device.
//
// The host owns the device and passes it in through a Provider. The
// compositor never creates an instance or adapter of its own, so it runs
// on whatever backend the host selected. Shaders are written in WGSL and
// compiled to SPIR-V with naga when the compositor is created.
package gpu
