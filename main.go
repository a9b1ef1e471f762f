package main

import "github.com/LegacyCodeHQ/compresolve/cmd"

func main() {
	cmd.Execute()
}
