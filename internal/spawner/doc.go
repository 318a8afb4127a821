// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

/*
Package spawner drives controllers through their lifecycle.

For each requested controller, in input order, the spawner issues the
forward sequence against the manager: already-loaded check, parameter
injection, load, configure, activate. Any failure aborts the whole
invocation; nothing is rolled back on the forward path. The reverse
sequence (one batched deactivate, then per-controller best-effort
unload) is the teardown path, run when spawnctl was asked to hold the
controllers until interrupted.

All calls are strictly sequential. The manager must never observe two
spawner operations in flight at once, so there is no parallelism here,
and cross-process serialization is the lockfile package's job.
*/
package spawner
