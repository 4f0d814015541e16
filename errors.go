package pptgen

import "errors"

// Sentinel errors for library operations.
var (
	// Template loading errors. Either one aborts the whole request.
	ErrTemplateNotFound = errors.New("template presentation not found")
	ErrTemplateInvalid  = errors.New("template presentation could not be opened")

	ErrSerialize      = errors.New("failed to serialize presentation")
	ErrSectionEncode  = errors.New("failed to encode sections")
	ErrInvalidLayout  = errors.New("layout index does not resolve to a template layout")
	ErrSlideCreate    = errors.New("failed to add slide")
	ErrRegionFill     = errors.New("failed to fill slide region")
	ErrUnknownPolicy  = errors.New("unknown layout policy")
	ErrInvalidRequest = errors.New("invalid slide request")
)
