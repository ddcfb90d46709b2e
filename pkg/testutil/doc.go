// Package testutil provides helpers shared by the prown test suites.
//
// Key components:
//   - Environment: isolates the prown config and state directories and
//     hands out project directories under a per-test root
//   - CreateFile / CreateDir: fixture builders that fail the test on error
//   - RequireErrorCode: asserts the code carried by a PrownError
//
// All test data should be defined inline. Each Environment lives in its own
// t.TempDir and restores the working directory on cleanup.
package testutil
