package main

import "todo-manager.com/todo-manager/cmd"

func main() {
	cmd.Execute()
}
