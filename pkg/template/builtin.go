package template

import "fmt"

// Built-in component type tags.
const (
	TypeStartEvent       = "startEvent"
	TypeTimerStartEvent  = "timerStartEvent"
	TypeEndEvent         = "endEvent"
	TypeHTTPCall         = "httpCall"
	TypeContentModifier  = "contentModifier"
	TypeMapper           = "mapper"
	TypeScript           = "script"
	TypeFilter           = "filter"
	TypeSplitter         = "splitter"
	TypeAggregator       = "aggregator"
	TypeEnricher         = "enricher"
	TypeExclusiveGateway = "exclusiveGateway"
	TypeParallelGateway  = "parallelGateway"
	TypeJoinGateway      = "joinGateway"
	TypeParticipant      = "participant"
)

// FallbackType is the type tag reported for the generic passthrough
// template used when a component type is not registered.
const FallbackType = "passthrough"

// Default returns a registry with all built-in component templates
// registered. The set covers the step kinds emitted by the upstream
// pipeline builders: events, call/transform activities, gateways, and
// external participants.
func Default() *Registry {
	r := NewRegistry()
	for _, spec := range builtinSpecs() {
		// Built-in specs are statically valid; a failure here is a
		// programming error.
		if err := r.Register(spec); err != nil {
			panic(err)
		}
	}
	return r
}

func builtinSpecs() []*Spec {
	return []*Spec{
		{
			Type:        TypeStartEvent,
			Category:    CategoryEvent,
			Description: "Message start event that triggers the flow",
			Incoming:    Slots{Min: 0, Max: 0},
			Outgoing:    Slots{Min: 1, Max: 1},
			Render:      renderStartEvent,
		},
		{
			Type:        TypeTimerStartEvent,
			Category:    CategoryEvent,
			Description: "Scheduled start event fired by a timer",
			Required:    []string{"schedule"},
			Incoming:    Slots{Min: 0, Max: 0},
			Outgoing:    Slots{Min: 1, Max: 1},
			Render:      renderTimerStartEvent,
		},
		{
			Type:        TypeEndEvent,
			Category:    CategoryEvent,
			Description: "Message end event that terminates a branch",
			Incoming:    Slots{Min: 1, Max: -1},
			Outgoing:    Slots{Min: 0, Max: 0},
			Render:      renderEndEvent,
		},
		{
			Type:        TypeHTTPCall,
			Category:    CategoryActivity,
			Description: "Synchronous HTTP call to an external endpoint",
			Required:    []string{"address", "method"},
			Incoming:    Slots{Min: 1, Max: -1},
			Outgoing:    Slots{Min: 1, Max: 1},
			Render:      activityRenderer("serviceTask", "ExternalCall"),
		},
		{
			Type:        TypeContentModifier,
			Category:    CategoryActivity,
			Description: "Sets message headers, properties, or body",
			Incoming:    Slots{Min: 1, Max: -1},
			Outgoing:    Slots{Min: 1, Max: 1},
			Render:      activityRenderer("callActivity", "ContentModifier"),
		},
		{
			Type:        TypeMapper,
			Category:    CategoryActivity,
			Description: "Applies a message mapping",
			Required:    []string{"mappingUri"},
			Incoming:    Slots{Min: 1, Max: -1},
			Outgoing:    Slots{Min: 1, Max: 1},
			Render:      activityRenderer("callActivity", "Mapping"),
		},
		{
			Type:        TypeScript,
			Category:    CategoryActivity,
			Description: "Runs a script step",
			Required:    []string{"script"},
			Incoming:    Slots{Min: 1, Max: -1},
			Outgoing:    Slots{Min: 1, Max: 1},
			Render:      activityRenderer("callActivity", "Script"),
		},
		{
			Type:        TypeFilter,
			Category:    CategoryActivity,
			Description: "Filters the payload by an XPath expression",
			Required:    []string{"xpath"},
			Incoming:    Slots{Min: 1, Max: -1},
			Outgoing:    Slots{Min: 1, Max: 1},
			Render:      activityRenderer("callActivity", "Filter"),
		},
		{
			Type:        TypeSplitter,
			Category:    CategoryActivity,
			Description: "Splits the message into parts",
			Required:    []string{"expression"},
			Incoming:    Slots{Min: 1, Max: -1},
			Outgoing:    Slots{Min: 1, Max: 1},
			Render:      activityRenderer("callActivity", "Splitter"),
		},
		{
			Type:        TypeAggregator,
			Category:    CategoryActivity,
			Description: "Aggregates correlated messages",
			Required:    []string{"correlation"},
			Incoming:    Slots{Min: 1, Max: -1},
			Outgoing:    Slots{Min: 1, Max: 1},
			Render:      activityRenderer("callActivity", "Aggregator"),
		},
		{
			Type:        TypeEnricher,
			Category:    CategoryActivity,
			Description: "Enriches the message from an external lookup",
			Required:    []string{"address"},
			Incoming:    Slots{Min: 1, Max: -1},
			Outgoing:    Slots{Min: 1, Max: 1},
			Render:      activityRenderer("serviceTask", "ContentEnricher"),
		},
		{
			Type:        TypeExclusiveGateway,
			Category:    CategoryGateway,
			Description: "Routes to exactly one matching branch",
			Incoming:    Slots{Min: 1, Max: -1},
			Outgoing:    Slots{Min: 2, Max: -1},
			Render:      gatewayRenderer("exclusiveGateway"),
		},
		{
			Type:        TypeParallelGateway,
			Category:    CategoryGateway,
			Description: "Forks into all branches in parallel",
			Incoming:    Slots{Min: 1, Max: -1},
			Outgoing:    Slots{Min: 2, Max: -1},
			Render:      gatewayRenderer("parallelGateway"),
		},
		{
			Type:        TypeJoinGateway,
			Category:    CategoryGateway,
			Description: "Joins parallel branches back together",
			Incoming:    Slots{Min: 2, Max: -1},
			Outgoing:    Slots{Min: 1, Max: 1},
			Render:      gatewayRenderer("parallelGateway"),
		},
		{
			Type:        TypeParticipant,
			Category:    CategoryParticipant,
			Description: "External system reached via message flows",
			Incoming:    Slots{Min: 0, Max: 0},
			Outgoing:    Slots{Min: 0, Max: 0},
			Render:      renderParticipant,
		},
	}
}

func renderStartEvent(ctx RenderContext) string {
	extra := indentChild + "<bpmn2:messageEventDefinition/>\n"
	return element("startEvent", ctx, "", extra)
}

func renderTimerStartEvent(ctx RenderContext) string {
	extra := indentChild + "<bpmn2:timerEventDefinition/>\n"
	return element("startEvent", ctx, "", extra)
}

func renderEndEvent(ctx RenderContext) string {
	extra := indentChild + "<bpmn2:messageEventDefinition/>\n"
	return element("endEvent", ctx, "", extra)
}

// activityRenderer builds a render function for task-like steps. The
// activityType attribute tells the target runtime which step behavior to
// bind; everything else comes from the node's config properties.
func activityRenderer(tag, activityType string) RenderFunc {
	return func(ctx RenderContext) string {
		attrs := fmt.Sprintf(" activityType=%q", activityType)
		return element(tag, ctx, attrs, "")
	}
}

func gatewayRenderer(tag string) RenderFunc {
	return func(ctx RenderContext) string {
		return element(tag, ctx, "", "")
	}
}

// renderParticipant emits a collaboration participant rather than a
// process flow element; the assembler places it in the collaboration
// section. Participants have no sequence-flow slots.
func renderParticipant(ctx RenderContext) string {
	role := ctx.Node.Config["role"]
	if role == "" {
		role = "EndpointReceiver"
	}
	return fmt.Sprintf("        <bpmn2:participant id=\"%s\" ifl:type=\"%s\" name=\"%s\"/>\n",
		EscapeAttr(ctx.Node.ID), EscapeAttr(role), EscapeAttr(ctx.Node.DisplayName()))
}
