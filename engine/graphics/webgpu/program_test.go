package webgpu

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reflectVS = `
struct Globals {
    @size(64) u_ModelViewProjection : mat4x4<f32>,
    @size(64) u_Tint : vec4<f32>,
};

@group(0) @binding(0) var<uniform> globals : Globals;

struct VertexInput {
    @location(0) position : vec3<f32>,
    @location(1) color0 : vec4<f32>,
    @location(2) texcoord0 : vec2<f32>,
};

struct VertexOutput {
    @builtin(position) clip : vec4<f32>,
};

@vertex
fn vs_entry(in : VertexInput) -> VertexOutput {
    var out : VertexOutput;
    out.clip = globals.u_ModelViewProjection * vec4<f32>(in.position, 1.0);
    return out;
}
`

const reflectFS = `
@group(1) @binding(0) var t_Diffuse : texture_2d<f32>;
@group(1) @binding(1) var s_Diffuse : sampler;

@fragment
fn fs_entry(in : VertexOutput) -> @location(0) vec4<f32> {
    return vec4<f32>(1.0, 1.0, 1.0, 1.0);
}
`

func TestReflectProgramAttributes(t *testing.T) {
	p, err := reflectProgram(reflectVS, reflectFS)
	require.NoError(t, err)

	assert.Equal(t, "vs_entry", p.vsEntry)
	assert.Equal(t, "fs_entry", p.fsEntry)

	assert.Equal(t, 0, p.attributes["position"])
	assert.Equal(t, 1, p.attributes["color0"])
	assert.Equal(t, 2, p.attributes["texcoord0"])
	assert.Len(t, p.attributes, 3)
}

func TestReflectProgramUniformBlock(t *testing.T) {
	p, err := reflectProgram(reflectVS, reflectFS)
	require.NoError(t, err)

	// Uniform location follows field declaration order within the block.
	assert.Equal(t, 0, p.uniforms["u_ModelViewProjection"])
	assert.Equal(t, 1, p.uniforms["u_Tint"])
	assert.Len(t, p.uniforms, 2)
}

func TestReflectProgramTextureSlots(t *testing.T) {
	p, err := reflectProgram(reflectVS, reflectFS)
	require.NoError(t, err)

	assert.Equal(t, 1, p.textureSlots)
	assert.Equal(t, 0, p.textures["t_Diffuse"])
}

func TestReflectProgramMultipleTextures(t *testing.T) {
	fs := `
@group(1) @binding(0) var t_Base : texture_2d<f32>;
@group(1) @binding(1) var s_Base : sampler;
@group(1) @binding(2) var t_Detail : texture_2d<f32>;
@group(1) @binding(3) var s_Detail : sampler;

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(0.0);
}
`
	p, err := reflectProgram(reflectVS, fs)
	require.NoError(t, err)

	assert.Equal(t, 2, p.textureSlots)
	assert.Equal(t, 0, p.textures["t_Base"])
	assert.Equal(t, 1, p.textures["t_Detail"])
}

func TestReflectProgramDefaultEntryNames(t *testing.T) {
	vs := `
struct VSIn {
    @location(0) position : vec3<f32>,
};

@vertex
fn vs_main(in : VSIn) -> @builtin(position) vec4<f32> {
    return vec4<f32>(in.position, 1.0);
}
`
	fs := `
@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(1.0);
}
`
	p, err := reflectProgram(vs, fs)
	require.NoError(t, err)

	assert.Equal(t, "vs_main", p.vsEntry)
	assert.Equal(t, "fs_main", p.fsEntry)
	assert.Empty(t, p.uniforms)
	assert.Zero(t, p.textureSlots)
}

func TestReflectProgramRequiresAttributes(t *testing.T) {
	vs := `
@vertex
fn vs_main() -> @builtin(position) vec4<f32> {
    return vec4<f32>(0.0);
}
`
	_, err := reflectProgram(vs, "")
	assert.Error(t, err)
}

func TestGetLocationLookups(t *testing.T) {
	p, err := reflectProgram(reflectVS, reflectFS)
	require.NoError(t, err)

	b := &backendImpl{mu: &sync.Mutex{}, programs: map[uint32]*programObject{1: p}}

	location, err := b.GetUniformLocation(1, "u_Tint")
	require.NoError(t, err)
	assert.Equal(t, 1, location)

	// Texture names resolve to pseudo-locations above the uniform index space.
	location, err = b.GetUniformLocation(1, "t_Diffuse")
	require.NoError(t, err)
	assert.Equal(t, textureLocationBase, location)

	location, err = b.GetUniformLocation(1, "u_Nope")
	require.NoError(t, err)
	assert.Equal(t, -1, location)

	location, err = b.GetAttributeLocation(1, "Position")
	require.NoError(t, err)
	assert.Equal(t, 0, location)
}
