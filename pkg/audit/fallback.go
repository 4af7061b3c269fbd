package audit

// FallbackNarrative is returned verbatim whenever the narrative service is
// unreachable or returns an unusable response. It is deliberately static:
// the audit feature degrades to generic guidance instead of failing.
const FallbackNarrative = `Summary
The automated reviewer could not be reached, so this report contains general guidance only. The live validation results shown on the canvas remain authoritative: any segment highlighted as overloaded carries more downstream demand than its size and length allow at the configured pressure drop.

Findings
1. Verify that every appliance demand reflects the nameplate input rating in BTU/h, including future appliances served by capped stubs.
2. Review highlighted segments first; upsizing the pipe or shortening the run are the usual corrections, and upstream trunk segments should be rechecked after any change.
3. Confirm measured segment lengths against the drawing before finalizing, since capacity falls as length grows and optimistic lengths hide undersized pipe.`
