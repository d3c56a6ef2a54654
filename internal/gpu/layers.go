// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpu

import (
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

//go:embed shaders/layers.wgsl
var layersShaderSource string

// MaxLayers is the number of layers one Composite call can blend.
const MaxLayers = 4

const (
	workgroupSize = 8
	paramsSize    = 16
	fenceTimeout  = 5 * time.Second
)

var (
	// ErrNoDevice is returned when a provider does not expose a hal device
	// and queue.
	ErrNoDevice = errors.New("gpu: provider has no hal device")

	// ErrClosed is returned by Composite after Close.
	ErrClosed = errors.New("gpu: layer compositor closed")

	// ErrTimeout is returned when the device does not finish a
	// composite within the fence timeout.
	ErrTimeout = errors.New("gpu: timed out waiting for device")
)

// Provider exposes a host-owned device. HalDevice must return a
// hal.Device and HalQueue a hal.Queue.
type Provider interface {
	HalDevice() any
	HalQueue() any
}

// LayerCompositor blends layer images on the GPU with a compute shader.
//
// Each layer is blended in its own compute pass so the shader needs no
// loop. Buffers are kept between frames and recreated when the frame
// size changes.
type LayerCompositor struct {
	mu     sync.Mutex
	device hal.Device
	queue  hal.Queue

	shader     hal.ShaderModule
	bindLayout hal.BindGroupLayout
	pipeLayout hal.PipelineLayout
	pipeline   hal.ComputePipeline

	width, height int
	layerBuf      hal.Buffer
	pixelBuf      hal.Buffer
	stagingBuf    hal.Buffer
	paramBufs     [MaxLayers]hal.Buffer
	bindGroups    [MaxLayers]hal.BindGroup

	upload []byte
	closed bool
}

// NewLayerCompositor compiles the compositing pipeline on the provider's
// device.
func NewLayerCompositor(p Provider) (*LayerCompositor, error) {
	if p == nil {
		return nil, ErrNoDevice
	}
	device, ok := p.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is %T", ErrNoDevice, p.HalDevice())
	}
	queue, ok := p.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is %T", ErrNoDevice, p.HalQueue())
	}

	c := &LayerCompositor{device: device, queue: queue}
	if err := c.createPipeline(); err != nil {
		c.destroyPipeline()
		return nil, err
	}
	slogger().Debug("gpu: layer compositor ready")
	return c, nil
}

// Composite blends layers back to front into dst. Every layer must have
// the bounds of dst. Fewer than MaxLayers layers are allowed.
func (c *LayerCompositor) Composite(dst *image.RGBA, layers []*image.RGBA) error {
	if len(layers) == 0 || len(layers) > MaxLayers {
		return fmt.Errorf("gpu: composite of %d layers", len(layers))
	}
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	for i, l := range layers {
		if l.Rect.Dx() != w || l.Rect.Dy() != h {
			return fmt.Errorf("gpu: layer %d is %v, want %dx%d", i, l.Rect, w, h)
		}
	}
	if w == 0 || h == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrClosed
	}
	if err := c.ensureBuffers(w, h); err != nil {
		return err
	}

	layerSize := w * h * 4
	clear(c.upload)
	for i, l := range layers {
		packPixels(c.upload[i*layerSize:(i+1)*layerSize], l)
	}
	c.queue.WriteBuffer(c.layerBuf, 0, c.upload)
	for i := range layers {
		var params [paramsSize]byte
		binary.LittleEndian.PutUint32(params[0:], uint32(w)) //nolint:gosec // frame sizes fit uint32
		binary.LittleEndian.PutUint32(params[4:], uint32(h)) //nolint:gosec // frame sizes fit uint32
		binary.LittleEndian.PutUint32(params[8:], uint32(i)) //nolint:gosec // i < MaxLayers
		c.queue.WriteBuffer(c.paramBufs[i], 0, params[:])
	}

	readback := make([]byte, layerSize)
	if err := c.dispatch(len(layers), uint32(w), uint32(h), readback); err != nil { //nolint:gosec // frame sizes fit uint32
		return err
	}
	unpackPixels(dst, readback)
	return nil
}

// Close releases every GPU resource. The device itself stays with the host.
func (c *LayerCompositor) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.destroyBuffers()
	c.destroyPipeline()
	return nil
}

func (c *LayerCompositor) dispatch(n int, w, h uint32, out []byte) error {
	encoder, err := c.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: "layers_encoder"})
	if err != nil {
		return fmt.Errorf("gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("layers"); err != nil {
		return fmt.Errorf("gpu: begin encoding: %w", err)
	}
	for i := range n {
		pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: "layers_pass"})
		pass.SetPipeline(c.pipeline)
		pass.SetBindGroup(0, c.bindGroups[i], nil)
		pass.Dispatch((w+workgroupSize-1)/workgroupSize, (h+workgroupSize-1)/workgroupSize, 1)
		pass.End()
	}
	encoder.CopyBufferToBuffer(c.pixelBuf, c.stagingBuf, []hal.BufferCopy{
		{SrcOffset: 0, DstOffset: 0, Size: uint64(len(out))},
	})
	cmd, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("gpu: end encoding: %w", err)
	}
	defer c.device.FreeCommandBuffer(cmd)

	fence, err := c.device.CreateFence()
	if err != nil {
		return fmt.Errorf("gpu: create fence: %w", err)
	}
	defer c.device.DestroyFence(fence)
	if err := c.queue.Submit([]hal.CommandBuffer{cmd}, fence, 1); err != nil {
		return fmt.Errorf("gpu: submit: %w", err)
	}
	if err := waitFence(c.device, fence, fenceTimeout); err != nil {
		return err
	}
	if err := c.queue.ReadBuffer(c.stagingBuf, 0, out); err != nil {
		return fmt.Errorf("gpu: readback: %w", err)
	}
	return nil
}

func (c *LayerCompositor) createPipeline() error {
	spirv, err := CompileShader(layersShaderSource)
	if err != nil {
		return err
	}
	c.shader, err = c.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "layers_shader",
		Source: hal.ShaderSource{SPIRV: spirv},
	})
	if err != nil {
		return fmt.Errorf("gpu: create shader module: %w", err)
	}

	c.bindLayout, err = c.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "layers_bind_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{Binding: 0, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform}},
			{Binding: 1, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage}},
			{Binding: 2, Visibility: gputypes.ShaderStageCompute, Buffer: &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage}},
		},
	})
	if err != nil {
		return fmt.Errorf("gpu: create bind group layout: %w", err)
	}

	c.pipeLayout, err = c.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "layers_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{c.bindLayout},
	})
	if err != nil {
		return fmt.Errorf("gpu: create pipeline layout: %w", err)
	}

	c.pipeline, err = c.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:   "layers_pipeline",
		Layout:  c.pipeLayout,
		Compute: hal.ComputeState{Module: c.shader, EntryPoint: "main"},
	})
	if err != nil {
		return fmt.Errorf("gpu: create compute pipeline: %w", err)
	}
	return nil
}

func (c *LayerCompositor) destroyPipeline() {
	if c.pipeline != nil {
		c.device.DestroyComputePipeline(c.pipeline)
		c.pipeline = nil
	}
	if c.pipeLayout != nil {
		c.device.DestroyPipelineLayout(c.pipeLayout)
		c.pipeLayout = nil
	}
	if c.bindLayout != nil {
		c.device.DestroyBindGroupLayout(c.bindLayout)
		c.bindLayout = nil
	}
	if c.shader != nil {
		c.device.DestroyShaderModule(c.shader)
		c.shader = nil
	}
}

// ensureBuffers sizes the buffers and bind groups for a w x h frame.
func (c *LayerCompositor) ensureBuffers(w, h int) error {
	if c.layerBuf != nil && c.width == w && c.height == h {
		return nil
	}
	c.destroyBuffers()

	pixelSize := uint64(w * h * 4) //nolint:gosec // positive frame size
	layerSize := pixelSize * MaxLayers
	var err error
	if c.layerBuf, err = c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "layers_input",
		Size:  layerSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst,
	}); err != nil {
		return fmt.Errorf("gpu: create layer buffer: %w", err)
	}
	if c.pixelBuf, err = c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "layers_output",
		Size:  pixelSize,
		Usage: gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc | gputypes.BufferUsageCopyDst,
	}); err != nil {
		c.destroyBuffers()
		return fmt.Errorf("gpu: create output buffer: %w", err)
	}
	if c.stagingBuf, err = c.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "layers_staging",
		Size:  pixelSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	}); err != nil {
		c.destroyBuffers()
		return fmt.Errorf("gpu: create staging buffer: %w", err)
	}
	for i := range MaxLayers {
		if c.paramBufs[i], err = c.device.CreateBuffer(&hal.BufferDescriptor{
			Label: "layers_params",
			Size:  paramsSize,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		}); err != nil {
			c.destroyBuffers()
			return fmt.Errorf("gpu: create params buffer: %w", err)
		}
		if c.bindGroups[i], err = c.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:  "layers_bind_group",
			Layout: c.bindLayout,
			Entries: []gputypes.BindGroupEntry{
				{Binding: 0, Resource: gputypes.BufferBinding{Buffer: c.paramBufs[i].NativeHandle(), Offset: 0, Size: paramsSize}},
				{Binding: 1, Resource: gputypes.BufferBinding{Buffer: c.layerBuf.NativeHandle(), Offset: 0, Size: layerSize}},
				{Binding: 2, Resource: gputypes.BufferBinding{Buffer: c.pixelBuf.NativeHandle(), Offset: 0, Size: pixelSize}},
			},
		}); err != nil {
			c.destroyBuffers()
			return fmt.Errorf("gpu: create bind group: %w", err)
		}
	}
	c.width, c.height = w, h
	c.upload = make([]byte, layerSize)
	slogger().Debug("gpu: layer buffers allocated", slog.Int("width", w), slog.Int("height", h))
	return nil
}

func (c *LayerCompositor) destroyBuffers() {
	for i := range MaxLayers {
		if c.bindGroups[i] != nil {
			c.device.DestroyBindGroup(c.bindGroups[i])
			c.bindGroups[i] = nil
		}
		if c.paramBufs[i] != nil {
			c.device.DestroyBuffer(c.paramBufs[i])
			c.paramBufs[i] = nil
		}
	}
	for _, b := range []*hal.Buffer{&c.layerBuf, &c.pixelBuf, &c.stagingBuf} {
		if *b != nil {
			c.device.DestroyBuffer(*b)
			*b = nil
		}
	}
	c.width, c.height = 0, 0
	c.upload = nil
}

// CompileShader compiles WGSL source to SPIR-V words.
func CompileShader(wgsl string) ([]uint32, error) {
	spirvBytes, err := naga.Compile(wgsl)
	if err != nil {
		return nil, fmt.Errorf("gpu: compile shader: %w", err)
	}
	if len(spirvBytes)%4 != 0 {
		return nil, fmt.Errorf("gpu: SPIR-V length %d is not a multiple of 4", len(spirvBytes))
	}
	words := make([]uint32, len(spirvBytes)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(spirvBytes[i*4:])
	}
	return words, nil
}

// packPixels writes the rows of src as little-endian RGBA words.
func packPixels(out []byte, src *image.RGBA) {
	w, h := src.Rect.Dx(), src.Rect.Dy()
	for y := range h {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		for x := range w {
			p := row[x*4 : x*4+4]
			packed := uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16 | uint32(p[3])<<24
			binary.LittleEndian.PutUint32(out[(y*w+x)*4:], packed)
		}
	}
}

func unpackPixels(dst *image.RGBA, data []byte) {
	w, h := dst.Rect.Dx(), dst.Rect.Dy()
	for y := range h {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for x := range w {
			v := binary.LittleEndian.Uint32(data[(y*w+x)*4:])
			row[x*4+0] = uint8(v)
			row[x*4+1] = uint8(v >> 8)
			row[x*4+2] = uint8(v >> 16)
			row[x*4+3] = uint8(v >> 24)
		}
	}
}

type fenceWaiter interface {
	Wait(fence hal.Fence, value uint64, timeout time.Duration) (bool, error)
}

// waitFence blocks until fence reaches 1. A wait that ends without the
// fence signalled and without an error is reported as ErrTimeout.
func waitFence(d fenceWaiter, fence hal.Fence, timeout time.Duration) error {
	ok, err := d.Wait(fence, 1, timeout)
	if err != nil {
		return fmt.Errorf("gpu: wait for device: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w after %v", ErrTimeout, timeout)
	}
	return nil
}
