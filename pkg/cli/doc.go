// Package cli implements the command-line interface of the core dump agent.
//
// # Commands
//
// Without a subcommand the agent runs in install mode:
//
//	core-dump-agent [--host-dir DIR] [--interval MS] [--suid-dumpable 0|1|2] ...
//
// It records and overrides kernel.core_pattern, kernel.core_pipe_limit and
// fs.suid_dumpable, deploys the composer into the host directory and then
// uploads finished dumps every interval until SIGINT or SIGTERM.
//
// remove - Teardown:
//
//	core-dump-agent remove [--host-dir DIR]
//
// Restores the recorded kernel parameters and deletes the composer files.
// Intended for a DaemonSet preStop hook. Exits non-zero when any parameter
// could not be restored.
//
// # Configuration
//
// Every flag has an environment variable of the same name in upper snake
// case (HOST_DIR, INTERVAL, VENDOR, ...). A .env file next to the executable
// is loaded first and never overrides variables already set. Storage
// settings (STORAGE_BACKEND, S3_*, OCI_*) are environment-only and re-read
// before every pass.
//
// # Exit Codes
//
//	0  clean shutdown or teardown
//	1  fatal error: invalid configuration, kernel parameter failure,
//	   missing backup record, composer deployment failure
package cli
