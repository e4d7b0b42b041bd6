package pipeline

// Phase is one gated stage of the pipeline. Entering a phase runs exactly
// one engine conversation; leaving it requires the Artifact to exist under
// the workspace.
type Phase struct {
	// Name is the stable identifier used in logs and errors.
	Name string
	// Label is the display name shown to observers.
	Label string
	// System is the agent persona and output contract.
	System string
	// Instruction is the user message; a %s placeholder, when present,
	// receives the raw requirement.
	Instruction string
	// Artifact is the deliverable path gated after the run. A directory
	// artifact is satisfied once it contains at least one file.
	Artifact string
}

// Agent system prompts demand ONE output file per conversation, which is
// what keeps small models reliable: one agent call = one deliverable.
const (
	prdSystem = `You are a Project Manager. Write a detailed Product Requirements Document for the given project.
Call write_file ONCE with path='PRD.md' containing a thorough PRD. Then stop.`

	architectureSystem = `You are a Project Manager and System Architect.
First, call read_file with path='PRD.md' to read the requirements.
Then call write_file ONCE with path='ARCHITECTURE.md'.

The ARCHITECTURE.md must describe:
1. Technology stack choices
2. Folder layout:
   - src/      : main source code files (list each file with its purpose)
   - tests/    : unit test files
   - frontend/ : HTML/CSS/JS files (if applicable)
   - logs/     : runtime log files
3. List all source files explicitly with a one-line purpose for each.`

	tasksSystem = `You are a Team Lead. Break the project into development tasks.
First, call read_file with path='PRD.md'.
Then, call read_file with path='ARCHITECTURE.md'.
Then, call write_file ONCE with path='TASK_LIST.json'.

The JSON must be an array of task objects, each with: id, name, description, files.
The 'files' key must list REAL source file paths that match ARCHITECTURE.md.

Critical rules:
- Do NOT use names like 'file1.txt'.
- Use paths from the architecture (src/, frontend/, tests/).
- Stop after writing TASK_LIST.json.`

	implementationSystem = `You are a senior Developer. Implement ALL project source files listed in TASK_LIST.json.

Steps:
1. Call read_file with path='ARCHITECTURE.md'
2. Call read_file with path='TASK_LIST.json'
3. For EVERY file in the 'files' array of every task, call write_file with COMPLETE working code.
   - Use the exact path from the task list.
   - Write REAL runnable code - no placeholders, no pseudocode, no TODO comments.
   - Include all imports, classes, functions, and a working main() or entry point.

Write every file. Stop only after ALL files are written.`

	reviewSystem = `You are a Code Reviewer. Validate the generated source files.
1. Call read_file with path='TASK_LIST.json' to get the file list.
2. Call read_file for each source file.
3. Call write_file ONCE with path='VALIDATION_REPORT.md' - a real report with CRITICAL/ADVISORY/NITPICK findings.
Stop after writing the report.`

	testsSystem = `You are a QA Engineer. Write unit tests for the project.
1. Call read_file with path='TASK_LIST.json' to get the file list.
2. Call read_file for each source file (once each).
3. Call write_file ONCE with path='tests/test_main.py' using pytest.
   - Include happy path, edge case, and error condition tests.
Stop immediately after writing. Do NOT re-read or rewrite the test file.`
)

// Phases returns the fixed ordered phase chain. The list is defined once
// per pipeline version; there is no branching and no loop-back.
func Phases() []Phase {
	return []Phase{
		{
			Name:        "prd",
			Label:       "Project Manager",
			System:      prdSystem,
			Instruction: "Write a PRD for this project: %s",
			Artifact:    "PRD.md",
		},
		{
			Name:        "architecture",
			Label:       "Architect",
			System:      architectureSystem,
			Instruction: "Read PRD.md, then write ARCHITECTURE.md with the folder layout and file list.",
			Artifact:    "ARCHITECTURE.md",
		},
		{
			Name:        "tasks",
			Label:       "Team Lead",
			System:      tasksSystem,
			Instruction: "Read PRD.md and ARCHITECTURE.md, then write TASK_LIST.json.",
			Artifact:    "TASK_LIST.json",
		},
		{
			Name:        "implementation",
			Label:       "Developer",
			System:      implementationSystem,
			Instruction: "Read ARCHITECTURE.md and TASK_LIST.json. Implement every source file listed.",
			Artifact:    "src",
		},
		{
			Name:        "review",
			Label:       "Code Reviewer",
			System:      reviewSystem,
			Instruction: "Read TASK_LIST.json, read each source file, write VALIDATION_REPORT.md.",
			Artifact:    "VALIDATION_REPORT.md",
		},
		{
			Name:        "tests",
			Label:       "QA Tester",
			System:      testsSystem,
			Instruction: "Read TASK_LIST.json, read each source file once, write tests/test_main.py.",
			Artifact:    "tests/test_main.py",
		},
	}
}
