// Package film implements spec.md §4.5's Film: the per-pixel accumulation
// buffer with a fixed set of output channels, and the imaging pipeline that
// turns accumulated radiance into displayable pixels.
//
// Grounded on the teacher's render/target.go RenderTarget abstraction (a
// narrow interface plus one CPU-backed implementation) and render/layers.go's
// z-ordered Composite (the model for the imaging pipeline's ordered stage
// chain, generalized from "blend layers" to "run tone-map, then
// gamma-correct, then optional stages").
package film

// Channel names one of the film's fixed accumulator buffers, spec.md §6's
// "Film output types" enumeration. RGB_IMAGEPIPELINE, RGBA_IMAGEPIPELINE and
// SERIALIZED_FILM are not accumulator channels; they are computed views
// served by Film.Output and Film.Serialize respectively (see DESIGN.md).
type Channel int

const (
	RGB Channel = iota
	RGBA
	Alpha
	Depth
	Position
	GeometryNormal
	ShadingNormal
	MaterialID
	DirectDiffuse
	DirectDiffuseReflect
	DirectDiffuseTransmit
	DirectGlossy
	DirectGlossyReflect
	DirectGlossyTransmit
	Emission
	IndirectDiffuse
	IndirectDiffuseReflect
	IndirectDiffuseTransmit
	IndirectGlossy
	IndirectGlossyReflect
	IndirectGlossyTransmit
	IndirectSpecular
	IndirectSpecularReflect
	IndirectSpecularTransmit
	MaterialIDMask
	DirectShadowMask
	IndirectShadowMask
	RadianceGroup
	UV
	RayCount
	ByMaterialID
	Irradiance
	ObjectID
	ObjectIDMask
	ByObjectID
	SampleCount
	Convergence
	MaterialIDColor
	Albedo
	AvgShadingNormal
	Noise
	UserImportance
	Caustic

	numChannels
)

// channelInfo is the flyweight spec.md §9 asks for: "implement channels as
// small flyweight objects carrying (kind, hasWeight)". components is the
// element count per pixel (1..4, mirroring imagemap's storage channel
// counts); hasWeight marks whether the channel carries a separate sample
// weight or is a plain running sum (counters, ids, geometry AOVs).
type channelInfo struct {
	name       string
	components int
	hasWeight  bool
}

var channelTable = [numChannels]channelInfo{
	RGB:                      {"RGB", 3, true},
	RGBA:                     {"RGBA", 4, true},
	Alpha:                    {"ALPHA", 1, true},
	Depth:                    {"DEPTH", 1, false},
	Position:                 {"POSITION", 3, false},
	GeometryNormal:           {"GEOMETRY_NORMAL", 3, false},
	ShadingNormal:            {"SHADING_NORMAL", 3, false},
	MaterialID:               {"MATERIAL_ID", 1, false},
	DirectDiffuse:            {"DIRECT_DIFFUSE", 3, true},
	DirectDiffuseReflect:     {"DIRECT_DIFFUSE_REFLECT", 3, true},
	DirectDiffuseTransmit:    {"DIRECT_DIFFUSE_TRANSMIT", 3, true},
	DirectGlossy:             {"DIRECT_GLOSSY", 3, true},
	DirectGlossyReflect:      {"DIRECT_GLOSSY_REFLECT", 3, true},
	DirectGlossyTransmit:     {"DIRECT_GLOSSY_TRANSMIT", 3, true},
	Emission:                 {"EMISSION", 3, true},
	IndirectDiffuse:          {"INDIRECT_DIFFUSE", 3, true},
	IndirectDiffuseReflect:   {"INDIRECT_DIFFUSE_REFLECT", 3, true},
	IndirectDiffuseTransmit:  {"INDIRECT_DIFFUSE_TRANSMIT", 3, true},
	IndirectGlossy:           {"INDIRECT_GLOSSY", 3, true},
	IndirectGlossyReflect:    {"INDIRECT_GLOSSY_REFLECT", 3, true},
	IndirectGlossyTransmit:   {"INDIRECT_GLOSSY_TRANSMIT", 3, true},
	IndirectSpecular:         {"INDIRECT_SPECULAR", 3, true},
	IndirectSpecularReflect:  {"INDIRECT_SPECULAR_REFLECT", 3, true},
	IndirectSpecularTransmit: {"INDIRECT_SPECULAR_TRANSMIT", 3, true},
	MaterialIDMask:           {"MATERIAL_ID_MASK", 1, true},
	DirectShadowMask:         {"DIRECT_SHADOW_MASK", 1, true},
	IndirectShadowMask:       {"INDIRECT_SHADOW_MASK", 1, true},
	RadianceGroup:            {"RADIANCE_GROUP", 3, true},
	UV:                       {"UV", 2, true},
	RayCount:                 {"RAYCOUNT", 1, false},
	ByMaterialID:             {"BY_MATERIAL_ID", 3, true},
	Irradiance:               {"IRRADIANCE", 3, true},
	ObjectID:                 {"OBJECT_ID", 1, false},
	ObjectIDMask:             {"OBJECT_ID_MASK", 1, true},
	ByObjectID:                {"BY_OBJECT_ID", 3, true},
	SampleCount:              {"SAMPLECOUNT", 1, false},
	Convergence:              {"CONVERGENCE", 1, false},
	MaterialIDColor:          {"MATERIAL_ID_COLOR", 3, false},
	Albedo:                   {"ALBEDO", 3, true},
	AvgShadingNormal:         {"AVG_SHADING_NORMAL", 3, true},
	Noise:                    {"NOISE", 1, false},
	UserImportance:           {"USER_IMPORTANCE", 1, false},
	Caustic:                  {"CAUSTIC", 3, true},
}

func (c Channel) valid() bool { return c >= 0 && c < numChannels }

// String returns the channel's wire name, matching the property-bag and
// serialized-film vocabulary of spec.md §6.
func (c Channel) String() string {
	if !c.valid() {
		return "UNKNOWN"
	}
	return channelTable[c].name
}

// Components reports how many float32 elements one pixel of c stores.
func (c Channel) Components() int {
	if !c.valid() {
		return 0
	}
	return channelTable[c].components
}

// HasWeight reports whether c accumulates a per-pixel sample weight
// alongside its sum, or is a plain running value (ids, counters).
func (c Channel) HasWeight() bool {
	if !c.valid() {
		return false
	}
	return channelTable[c].hasWeight
}
