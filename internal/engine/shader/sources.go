package shader

// PanoramaVertex transforms sphere vertices by the camera view-projection.
const PanoramaVertex = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec2 aUV;

uniform mat4 uViewProj;

out vec2 vUV;

void main() {
	vUV = aUV;
	gl_Position = uViewProj * vec4(aPos, 1.0);
}
`

// PanoramaFragment samples the equirectangular texture.
const PanoramaFragment = `
#version 410 core

in vec2 vUV;

uniform sampler2D uTexture;

out vec4 FragColor;

void main() {
	FragColor = texture(uTexture, vUV);
}
`

// MarkerVertex draws pin anchors as screen-aligned points.
const MarkerVertex = `
#version 410 core

layout (location = 0) in vec3 aPos;
layout (location = 1) in vec4 aColor;

uniform mat4 uViewProj;
uniform float uPointSize;

out vec4 vColor;

void main() {
	vColor = aColor;
	gl_Position = uViewProj * vec4(aPos, 1.0);
	gl_PointSize = uPointSize;
}
`

// MarkerFragment renders round markers.
const MarkerFragment = `
#version 410 core

in vec4 vColor;

out vec4 FragColor;

void main() {
	vec2 d = gl_PointCoord - vec2(0.5);
	if (dot(d, d) > 0.25) {
		discard;
	}
	FragColor = vColor;
}
`
