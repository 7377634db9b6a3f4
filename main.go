package main

import "github.com/MJE43/stake-mines-go/cmd"

func main() {
	cmd.Execute()
}
