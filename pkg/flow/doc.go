// Package flow models a multi-page form as a directed, branching graph.
//
// A [Flow] holds [Node] values of four kinds: ordinary pages, branching points
// that fan out to several destinations, and the two sentinel pages every form
// ends with (check answers and confirmation). It is the read side the layout
// core queries: [Flow.Kind] and [Flow.Destinations] answer "what is this node"
// and "where can it lead", in a stable declared order.
//
// # Service Metadata
//
// Flows are usually read from the form builder's service metadata document:
//
//	{
//	  "service_name": "Apply for a licence",
//	  "start_page": "7a2c...",
//	  "pages": [{"_id": "7a2c...", "_type": "page.start", "heading": "Start"}],
//	  "flow": {
//	    "7a2c...": {"_type": "flow.page", "next": {"default": "c81f..."}},
//	    "c81f...": {
//	      "_type": "flow.branch",
//	      "next": {
//	        "default": "09be...",
//	        "conditionals": [{"next": "4d1a..."}, {"next": "e3f0..."}]
//	      }
//	    }
//	  }
//	}
//
// Use [ReadFile], [Read] or [Unmarshal] to decode a document, and [FromService]
// to build the flow. Branch destinations list conditionals first, in document
// order, followed by the default.
//
// # Validation
//
// [Flow.Validate] rejects flows with unknown destinations, duplicate sentinel
// pages, a missing start node, destination counts that do not fit the node
// kind, and cycles. The layout core assumes a validated flow.
package flow
