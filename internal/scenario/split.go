package scenario

// terminalIDs are the data stores and external APIs where a request turns
// around.
var terminalIDs = []string{"accounts_api", "cards_api", "loans_api", "crm", "cosmos_db", "vector_db"}

var terminals = func() map[string]bool {
	m := make(map[string]bool, len(terminalIDs))
	for _, id := range terminalIDs {
		m[id] = true
	}
	return m
}()

// TerminalEntities returns the entity ids that mark a request turnaround.
func TerminalEntities() []string {
	return append([]string(nil), terminalIDs...)
}

// IsTerminal reports whether id is a terminal entity.
func IsTerminal(id string) bool { return terminals[id] }

// Split returns the length of the request half of path: everything up to and
// including the last terminal entity, or the first len/2 entries when the path
// holds no terminal. This approximates the turnaround point and does not
// follow edge direction.
func Split(path []string) int {
	for i := len(path) - 1; i >= 0; i-- {
		if terminals[path[i]] {
			return i + 1
		}
	}
	return len(path) / 2
}

// Halves splits path into its request and response halves.
func Halves(path []string) (request, response []string) {
	n := Split(path)
	return path[:n], path[n:]
}
