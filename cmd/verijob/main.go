// Command verijob runs the job-posting fraud detection service.
// Usage: verijob serve | verijob analyze "<text or URL>"
package main

import "github.com/verijob/verijob/internal/cli"

func main() {
	cli.Execute()
}
