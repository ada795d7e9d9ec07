package tonemap

// tonemapWGSL implements spec.md §4.4's per-pixel rule: normalize by the
// whitepoint, clamp to [0,1], apply sRGB gamma encoding (piecewise,
// threshold 0.0031308), and let the RGBA8Unorm storage texture write
// quantize to 8 bits. Alpha is forced to 1.0 (255 after quantization)
// since captures are always opaque. Workgroup tiling is 32x32 texels per
// spec.md §4.4, dispatch = ceil(w/32) x ceil(h/32).
const tonemapWGSL = `
@group(0) @binding(0) var hdr_image: texture_storage_2d<rgba16float, read>;
@group(0) @binding(1) var sdr_image: texture_storage_2d<rgba8unorm, write>;

struct Params {
    whitepoint: f32,
}
@group(0) @binding(2) var<uniform> params: Params;

fn srgb_encode(c: f32) -> f32 {
    if (c <= 0.0031308) {
        return c * 12.92;
    }
    return 1.055 * pow(c, 1.0 / 2.4) - 0.055;
}

@compute @workgroup_size(32, 32, 1)
fn main(@builtin(global_invocation_id) id: vec3<u32>) {
    let dims = textureDimensions(hdr_image);
    if (id.x >= dims.x || id.y >= dims.y) {
        return;
    }

    let texel = textureLoad(hdr_image, vec2<u32>(id.x, id.y));
    let normalized = clamp(texel.rgb / params.whitepoint, vec3<f32>(0.0), vec3<f32>(1.0));

    let encoded = vec3<f32>(
        srgb_encode(normalized.r),
        srgb_encode(normalized.g),
        srgb_encode(normalized.b),
    );

    textureStore(sdr_image, vec2<u32>(id.x, id.y), vec4<f32>(encoded, 1.0));
}
`
