package fov

// ValidationError reports malformed FOV input: angles out of range, a
// vertex with the wrong number of components, or missing vertices. It is
// raised at construction and never recovered from locally.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "fov: invalid input: " + e.Reason
}

// GeometryError reports an FOV whose vertices are well-formed numbers but
// do not describe a usable region: a cone half-angle outside (0,90), a
// polygon spanning more than a hemisphere, or every vertex on the 0/360
// seam.
type GeometryError struct {
	Reason string
}

func (e *GeometryError) Error() string {
	return "fov: bad geometry: " + e.Reason
}
