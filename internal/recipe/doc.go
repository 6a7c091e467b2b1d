// Package recipe loads the build parameters for a pipeline run.
//
// Parameters are declared in an HCL file, conventionally wheelwright.hcl in
// the application source tree:
//
//	base_version = "3.12"
//	uid          = 1001
//	account      = "agent"
//	version_tag  = "1.4.0"
//	features     = ["askar", "bbs"]
//	entrypoint   = ["cloudagent"]
//
// Every attribute is optional and falls back to a default, so a build can
// run with no recipe file at all. Parameters are fixed once a build starts;
// the decoded [Recipe] is passed around by value and never mutated.
package recipe
