package renderer

// captureWGSL implements spec.md §4.5's capture pipeline: a full-window
// triangle reads the HDR image texel by texel with textureLoad (the bound
// sampler is not used) and applies the same per-pixel rule as the
// tonemapper (divide by whitepoint, clamp, sRGB encode) so the live
// preview matches the saved PNG bit-for-bit.
const captureWGSL = `
struct CaptureParams {
    whitepoint: f32,
}
@group(0) @binding(0) var hdrTexture: texture_2d<f32>;
@group(0) @binding(1) var hdrSampler: sampler;
@group(0) @binding(2) var<uniform> params: CaptureParams;

struct VertexOut {
    @builtin(position) position: vec4<f32>,
    @location(0) uv: vec2<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) vertexIndex: u32) -> VertexOut {
    var positions = array<vec2<f32>, 3>(
        vec2<f32>(-1.0, -1.0),
        vec2<f32>(3.0, -1.0),
        vec2<f32>(-1.0, 3.0),
    );
    let p = positions[vertexIndex];
    var out: VertexOut;
    out.position = vec4<f32>(p, 0.0, 1.0);
    out.uv = vec2<f32>(p.x * 0.5 + 0.5, 1.0 - (p.y * 0.5 + 0.5));
    return out;
}

fn srgbEncode(c: vec3<f32>) -> vec3<f32> {
    let lo = c * 12.92;
    let hi = 1.055 * pow(c, vec3<f32>(1.0 / 2.4)) - 0.055;
    return select(hi, lo, c <= vec3<f32>(0.0031308));
}

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {
    let dims = textureDimensions(hdrTexture);
    let texel = vec2<i32>(in.uv * vec2<f32>(dims));
    let raw = textureLoad(hdrTexture, texel, 0).rgb;
    let normalized = clamp(raw / params.whitepoint, vec3<f32>(0.0), vec3<f32>(1.0));
    return vec4<f32>(srgbEncode(normalized), 1.0);
}
`

// selectionWGSL implements spec.md §4.5's selection pipeline: shades
// outside the selection rectangle with 50% opaque black, leaving the
// interior transparent. Edge ties (a pixel centre exactly on an edge)
// count as inside.
const selectionWGSL = `
struct SelectionParams {
    start: vec2<f32>,
    end: vec2<f32>,
}
@group(0) @binding(0) var<uniform> params: SelectionParams;

struct VertexOut {
    @builtin(position) position: vec4<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) vertexIndex: u32) -> VertexOut {
    var positions = array<vec2<f32>, 3>(
        vec2<f32>(-1.0, -1.0),
        vec2<f32>(3.0, -1.0),
        vec2<f32>(-1.0, 3.0),
    );
    var out: VertexOut;
    out.position = vec4<f32>(positions[vertexIndex], 0.0, 1.0);
    return out;
}

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {
    let p = in.position.xy;
    let inside = p.x >= params.start.x && p.x <= params.end.x &&
                 p.y >= params.start.y && p.y <= params.end.y;
    if inside {
        discard;
    }
    return vec4<f32>(0.0, 0.0, 0.0, 0.5);
}
`

// lineWGSL implements spec.md §4.5's line pipeline: each draw takes
// (start, end, width, colour) and emits a screen-aligned rectangle of
// the requested physical-pixel width, used both for the four selection
// border edges and the two mouse crosshair guides.
const lineWGSL = `
struct LineParams {
    start: vec2<f32>,
    end: vec2<f32>,
    width: f32,
    color: vec4<f32>,
    windowSize: vec2<f32>,
}
@group(0) @binding(0) var<uniform> params: LineParams;

struct VertexOut {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec4<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) vertexIndex: u32) -> VertexOut {
    let delta = params.end - params.start;
    let length = max(length(delta), 0.0001);
    let dir = delta / length;
    let normal = vec2<f32>(-dir.y, dir.x);
    let half = params.width * 0.5;

    // Overhang the endpoints by half-width so adjoining border edges
    // meet at square corners rather than leaving a gap.
    let a = params.start - dir * half;
    let b = params.end + dir * half;

    var corners = array<vec2<f32>, 6>(
        a - normal * half, b - normal * half, b + normal * half,
        a - normal * half, b + normal * half, a + normal * half,
    );
    let px = corners[vertexIndex];

    let clip = vec2<f32>(
        (px.x / params.windowSize.x) * 2.0 - 1.0,
        1.0 - (px.y / params.windowSize.y) * 2.0,
    );

    var out: VertexOut;
    out.position = vec4<f32>(clip, 0.0, 1.0);
    out.color = params.color;
    return out;
}

@fragment
fn fs_main(in: VertexOut) -> @location(0) vec4<f32> {
    return in.color;
}
`
