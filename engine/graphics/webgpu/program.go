package webgpu

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/hoangpq/crayon/engine/graphics"
)

// programObject pairs the compiled shader modules with the reflection data
// mined from the WGSL sources and the bind group layouts derived from it.
type programObject struct {
	vsModule *wgpu.ShaderModule
	fsModule *wgpu.ShaderModule

	vsEntry string
	fsEntry string

	// attributes maps lowercased vertex input field names to @location indices.
	attributes map[string]int

	// uniforms maps uniform block field names to their declaration index; the
	// field's byte offset in the block is index*uniformSlotSize.
	uniforms map[string]int

	// textures maps group-1 texture variable names to their declared slot
	// (binding/2). Their uniform locations are offset by textureLocationBase
	// to keep them out of the uniform block's index space.
	textures map[string]int

	// textureSlots is the number of texture/sampler pairs declared at group 1.
	textureSlots int

	// uniformLayout and textureLayout back the pipeline layout; either may be
	// nil when the shader declares no such group.
	uniformLayout *wgpu.BindGroupLayout
	textureLayout *wgpu.BindGroupLayout
	layout        *wgpu.PipelineLayout

	// uniformData is the staged uniform block, one 64-byte slot per field.
	uniformData []byte
}

var (
	uniformVarPattern   = regexp.MustCompile(`@group\(0\)\s*@binding\(0\)\s*var<uniform>\s*\w+\s*:\s*(\w+)`)
	entryPattern        = regexp.MustCompile(`@(vertex|fragment)\s*fn\s+(\w+)\s*\(\s*(?:\w+)\s*:\s*(\w+)`)
	locationPattern     = regexp.MustCompile(`@location\((\d+)\)\s*(\w+)\s*:`)
	structFieldPattern  = regexp.MustCompile(`(?:@\w+\(\d+\)\s*)*(\w+)\s*:\s*[\w<>\., ]+`)
	textureSlotsPattern = regexp.MustCompile(`@group\(1\)\s*@binding\((\d+)\)\s*var\s+(\w+)\s*:\s*texture_2d`)
)

// textureLocationBase offsets texture pseudo-locations so they never collide
// with uniform block indices.
const textureLocationBase = 1 << 16

// structBody extracts the brace-delimited body of a named WGSL struct.
func structBody(source, name string) (string, bool) {
	marker := "struct " + name
	start := strings.Index(source, marker)
	if start < 0 {
		return "", false
	}
	open := strings.Index(source[start:], "{")
	if open < 0 {
		return "", false
	}
	open += start
	close := strings.Index(source[open:], "}")
	if close < 0 {
		return "", false
	}
	return source[open+1 : open+close], true
}

// reflectProgram mines the binding convention out of a WGSL shader pair:
// the vertex input attributes, the group-0 uniform block fields and the
// group-1 texture slot count.
func reflectProgram(vs, fs string) (*programObject, error) {
	p := &programObject{
		attributes: make(map[string]int),
		uniforms:   make(map[string]int),
		textures:   make(map[string]int),
		vsEntry:    "vs_main",
		fsEntry:    "fs_main",
	}

	var vsInput string
	for _, match := range entryPattern.FindAllStringSubmatch(vs, -1) {
		if match[1] == "vertex" {
			p.vsEntry = match[2]
			vsInput = match[3]
		}
	}
	for _, match := range entryPattern.FindAllStringSubmatch(fs, -1) {
		if match[1] == "fragment" {
			p.fsEntry = match[2]
		}
	}

	if vsInput != "" {
		if body, ok := structBody(vs, vsInput); ok {
			for _, match := range locationPattern.FindAllStringSubmatch(body, -1) {
				location, err := strconv.Atoi(match[1])
				if err != nil {
					continue
				}
				p.attributes[strings.ToLower(match[2])] = location
			}
		}
	}
	if len(p.attributes) == 0 {
		return nil, fmt.Errorf("webgpu: vertex shader declares no input attributes")
	}

	combined := vs + "\n" + fs
	if match := uniformVarPattern.FindStringSubmatch(combined); match != nil {
		body, ok := structBody(combined, match[1])
		if !ok {
			return nil, fmt.Errorf("webgpu: uniform struct %s not found", match[1])
		}
		for _, field := range structFieldPattern.FindAllStringSubmatch(body, -1) {
			name := field[1]
			if _, seen := p.uniforms[name]; !seen {
				p.uniforms[name] = len(p.uniforms)
			}
		}
	}

	maxSlot := -1
	for _, match := range textureSlotsPattern.FindAllStringSubmatch(combined, -1) {
		binding, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		slot := binding / 2
		p.textures[match[2]] = slot
		if slot > maxSlot {
			maxSlot = slot
		}
	}
	p.textureSlots = maxSlot + 1

	return p, nil
}

func (b *backendImpl) CreateProgram(vs, fs string) (uint32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, err := reflectProgram(vs, fs)
	if err != nil {
		return 0, err
	}

	p.vsModule, err = b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "Vertex Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: vs,
		},
	})
	if err != nil {
		return 0, fmt.Errorf("webgpu: compile vertex shader: %w", err)
	}
	p.fsModule, err = b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: "Fragment Shader",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: fs,
		},
	})
	if err != nil {
		p.vsModule.Release()
		return 0, fmt.Errorf("webgpu: compile fragment shader: %w", err)
	}

	if err := b.createProgramLayouts(p); err != nil {
		p.fsModule.Release()
		p.vsModule.Release()
		return 0, err
	}

	p.uniformData = make([]byte, len(p.uniforms)*uniformSlotSize)

	id := b.allocID()
	b.programs[id] = p
	return id, nil
}

// createProgramLayouts builds the fixed bind group layouts implied by the
// shader's declarations: group 0 with the uniform block, group 1 with a
// texture/sampler pair per slot.
func (b *backendImpl) createProgramLayouts(p *programObject) error {
	var groups []*wgpu.BindGroupLayout

	if len(p.uniforms) > 0 {
		layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label: "Uniform Block Layout",
			Entries: []wgpu.BindGroupLayoutEntry{
				{
					Binding:    0,
					Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
					Buffer: wgpu.BufferBindingLayout{
						Type:           wgpu.BufferBindingTypeUniform,
						MinBindingSize: uint64(len(p.uniforms) * uniformSlotSize),
					},
				},
			},
		})
		if err != nil {
			return fmt.Errorf("webgpu: create uniform layout: %w", err)
		}
		p.uniformLayout = layout
		groups = append(groups, layout)
	}

	if p.textureSlots > 0 {
		entries := make([]wgpu.BindGroupLayoutEntry, 0, p.textureSlots*2)
		for slot := 0; slot < p.textureSlots; slot++ {
			entries = append(entries,
				wgpu.BindGroupLayoutEntry{
					Binding:    uint32(slot * 2),
					Visibility: wgpu.ShaderStageFragment,
					Texture: wgpu.TextureBindingLayout{
						SampleType:    wgpu.TextureSampleTypeFloat,
						ViewDimension: wgpu.TextureViewDimension2D,
					},
				},
				wgpu.BindGroupLayoutEntry{
					Binding:    uint32(slot*2 + 1),
					Visibility: wgpu.ShaderStageFragment,
					Sampler: wgpu.SamplerBindingLayout{
						Type: wgpu.SamplerBindingTypeFiltering,
					},
				},
			)
		}
		layout, err := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   "Texture Layout",
			Entries: entries,
		})
		if err != nil {
			return fmt.Errorf("webgpu: create texture layout: %w", err)
		}
		p.textureLayout = layout
		if p.uniformLayout == nil {
			// Group indices are positional; an empty group 0 fills the gap.
			empty, emptyErr := b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
				Label: "Empty Layout",
			})
			if emptyErr != nil {
				return fmt.Errorf("webgpu: create empty layout: %w", emptyErr)
			}
			groups = append(groups, empty)
		}
		groups = append(groups, layout)
	}

	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Program Layout",
		BindGroupLayouts: groups,
	})
	if err != nil {
		return fmt.Errorf("webgpu: create pipeline layout: %w", err)
	}
	p.layout = layout
	return nil
}

func (b *backendImpl) DeleteProgram(id uint32) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.programs[id]
	if !ok {
		return fmt.Errorf("webgpu: unknown program %d", id)
	}
	p.fsModule.Release()
	p.vsModule.Release()
	delete(b.programs, id)

	// Cached pipelines referencing the program become unreachable.
	prefix := fmt.Sprintf("p%d|", id)
	for key := range b.pipelineCache {
		if strings.HasPrefix(key, prefix) {
			delete(b.pipelineCache, key)
		}
	}
	return nil
}

func (b *backendImpl) GetUniformLocation(program uint32, name string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.programs[program]
	if !ok {
		return graphics.UnresolvedLocation, fmt.Errorf("webgpu: unknown program %d", program)
	}
	if location, ok := p.uniforms[name]; ok {
		return location, nil
	}
	if slot, ok := p.textures[name]; ok {
		return textureLocationBase + slot, nil
	}
	return graphics.UnresolvedLocation, nil
}

func (b *backendImpl) GetAttributeLocation(program uint32, name string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	p, ok := b.programs[program]
	if !ok {
		return graphics.UnresolvedLocation, fmt.Errorf("webgpu: unknown program %d", program)
	}
	if location, ok := p.attributes[strings.ToLower(name)]; ok {
		return location, nil
	}
	return graphics.UnresolvedLocation, nil
}
