package template

// fallbackSpec is the generic passthrough template used for component
// types that are not registered. It preserves the node's identity and
// every flow-reference slot so downstream connectivity survives, but
// renders a minimal no-op activity. Assembly continues with an
// UNSUPPORTED_COMPONENT diagnostic instead of aborting.
var fallbackSpec = &Spec{
	Type:        FallbackType,
	Category:    CategoryActivity,
	Description: "Generic passthrough for unmapped component types",
	Incoming:    Slots{Min: 0, Max: -1},
	Outgoing:    Slots{Min: 0, Max: -1},
	Render:      renderFallback,
}

func renderFallback(ctx RenderContext) string {
	return element("callActivity", ctx, " activityType=\"Passthrough\"", "")
}
