// Package io provides JSON and YAML import plus JSON export for pipeline
// graphs.
//
// The wire format has two top-level arrays:
//
//	{
//	  "nodes": [
//	    {"id": "start", "type": "startEvent"},
//	    {"id": "transform", "type": "contentModifier"}
//	  ],
//	  "edges": [
//	    {"source": "start", "target": "transform"}
//	  ]
//	}
//
// Import validates structure as it builds the graph: duplicate ids,
// unknown edge endpoints, and malformed documents are rejected with the
// offending node or edge named in the error. Deeper structural rules
// (single start node, connectivity, acyclic sequence flow) are checked
// by the assembler, not here.
//
// [MarshalGraph] produces canonical bytes used as cache key material:
// identical graphs always serialize identically.
package io
