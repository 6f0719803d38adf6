// Command fitosanitario runs the phytosanitary records tooling: the ops
// server, schema migration, reports, alerts and inspection utilities.
package main

import "os"

func main() {
	root, c := newRootCmd()
	err := root.Execute()
	c.close()
	if err != nil {
		os.Exit(1)
	}
}
