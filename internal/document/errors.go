package document

import "errors"

var (
	// ErrNotFound reports an operation against a block id absent from the document.
	ErrNotFound = errors.New("document: block not found")
	// ErrUnknownProperty reports a property name with no FieldSpec for the block's type.
	ErrUnknownProperty = errors.New("document: unknown property")
	// ErrInvalidZone reports a zone name the target container does not declare.
	ErrInvalidZone = errors.New("document: invalid zone")
	// ErrCycleDetected reports an insert or move that would nest a block inside itself.
	ErrCycleDetected = errors.New("document: cycle detected")
	// ErrAlreadyAttached reports an insert of an instance that is already part of the tree.
	ErrAlreadyAttached = errors.New("document: instance already attached")
	// ErrMalformedDocument reports a serialized payload that cannot be decoded
	// into a well-formed document. Never silently repaired.
	ErrMalformedDocument = errors.New("document: malformed document")
)
