package main

import (
	"os"

	"github.com/3-lines-studio/spark"
)

func main() {
	os.Exit(spark.Main(spark.Options{}))
}
