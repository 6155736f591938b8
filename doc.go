// Package drape renders a georeferenced 3D Tiles photogrammetry dataset
// draped onto a 2D slippy-map renderer.
//
// The package bridges three coordinate spaces: ECEF, the native frame of
// b3dm tile geometry; zoom-scaled Web Mercator, the map host's world space;
// and GPU clip space. It builds the closed-form ECEF-to-Mercator transform
// anchored at a tangent point, splits the combined render matrix so that
// all large-magnitude cancellation happens in double precision on the CPU,
// and drives an external tile-streaming engine with a fixed decoy camera so
// that full geometric detail loads regardless of the map camera's zoom.
//
// The streaming engine, the map host and the 3D renderer are collaborators
// consumed through interfaces (Engine, Host, render.Renderer). The package
// owns none of their lifecycles; it mutates loaded tile scenes in place and
// restores any shared GPU state it touches around its draw call.
package drape
