// Command clktool resolves i.MX RT1062 peripheral clock frequencies from a
// register snapshot or a live board, and runs the timer driver against the
// simulated GPT.
package main

func main() {
	Execute()
}
