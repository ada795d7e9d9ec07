package scanner

// imageReductionWGSL implements spec.md §4.3 stage 1: each workgroup
// covers a 32x32 texel tile (16x16 invocations, each loading a 2x2 quad),
// takes the max of R/G/B per texel (alpha excluded), and performs a
// subgroup-wide max reduction, with one lane per subgroup writing the
// result. Grounded on the original source_pass.rs's descriptor/dispatch
// shape (image storage binding 0, output buffer binding 1) translated
// into WGSL the way examples/compute-sum/main.go authors its shaders.
const imageReductionWGSL = `
enable f16;
enable subgroups;

@group(0) @binding(0) var source: texture_storage_2d<rgba16float, read>;
@group(0) @binding(1) var<storage, read_write> output: array<f16>;

@compute @workgroup_size(16, 16, 1)
fn main(
    @builtin(global_invocation_id) global_id: vec3<u32>,
    @builtin(workgroup_id) wg_id: vec3<u32>,
    @builtin(num_workgroups) wg_count: vec3<u32>,
    @builtin(local_invocation_index) local_index: u32,
    @builtin(subgroup_invocation_id) lane: u32,
    @builtin(subgroup_size) lane_count: u32,
) {
    let dims = textureDimensions(source);
    let base = vec2<u32>(global_id.x * 2u, global_id.y * 2u);

    var local_max: f32 = 0.0;
    for (var dy: u32 = 0u; dy < 2u; dy = dy + 1u) {
        for (var dx: u32 = 0u; dx < 2u; dx = dx + 1u) {
            let coord = base + vec2<u32>(dx, dy);
            if (coord.x < dims.x && coord.y < dims.y) {
                let texel = textureLoad(source, coord);
                local_max = max(local_max, max(texel.r, max(texel.g, texel.b)));
            }
        }
    }

    let reduced = subgroupMax(local_max);

    let subgroups_per_workgroup = (256u + lane_count - 1u) / lane_count;
    let subgroup_index = local_index / lane_count;
    if (lane == 0u) {
        let workgroup_index = wg_id.y * wg_count.x + wg_id.x;
        let out_index = workgroup_index * subgroups_per_workgroup + subgroup_index;
        output[out_index] = f16(reduced);
    }
}
`

// bufferReductionWGSL implements spec.md §4.3 stage 2: a workgroup of 128
// invocations, each folding subgroupSize input elements via a strided
// loop, followed by a subgroup-wide max reduction; one lane per subgroup
// emits the result. Grounded on the original reduce.rs's ping-pong
// read/write buffer pair and push-constant input length, with the push
// constant replaced by a uniform buffer per this package's scanner.go
// comment (the gpu package's ComputePassEncoder has no push-constant
// call).
const bufferReductionWGSL = `
enable f16;
enable subgroups;

@group(0) @binding(0) var<storage, read> input_buf: array<f16>;
@group(0) @binding(1) var<storage, read_write> output_buf: array<f16>;

struct Params {
    input_length: u32,
}
@group(0) @binding(2) var<uniform> params: Params;

@compute @workgroup_size(128, 1, 1)
fn main(
    @builtin(workgroup_id) wg_id: vec3<u32>,
    @builtin(local_invocation_index) local_index: u32,
    @builtin(subgroup_invocation_id) lane: u32,
    @builtin(subgroup_size) lane_count: u32,
) {
    let base = wg_id.x * 128u * lane_count + local_index * lane_count;

    var local_max: f16 = 0.0h;
    for (var i: u32 = 0u; i < lane_count; i = i + 1u) {
        let idx = base + i;
        if (idx < params.input_length) {
            local_max = max(local_max, input_buf[idx]);
        }
    }

    let reduced = subgroupMax(local_max);

    let subgroups_per_workgroup = 128u / lane_count;
    let subgroup_index = local_index / lane_count;
    if (lane == 0u) {
        let out_index = wg_id.x * subgroups_per_workgroup + subgroup_index;
        output_buf[out_index] = reduced;
    }
}
`
