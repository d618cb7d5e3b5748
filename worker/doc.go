// Package worker implements the three worker units of the research
// workflow: the Researcher (news gathering, sentiment and risk extraction),
// the Analyst (quantitative ratio analysis) and the Reporter (report
// synthesis). Each worker is a pure function over its inputs and
// capabilities: it fetches raw data through its assigned capability, derives
// categorical judgments from fixed thresholds, optionally asks a Synthesizer
// for narrative text (falling back to deterministic text when that fails)
// and persists every finding into the shared memory store.
package worker
