package util

import (
	"fmt"
	"runtime"
)

func doPanic(stack int) {
	pc, file, line, ok := runtime.Caller(1 + stack)
	if ok {
		fun := runtime.FuncForPC(pc)
		if fun != nil {
			panic(fmt.Sprintf("Assertion failed in function %s on %s:%d", fun.Name(), file, line))
		}
		panic(fmt.Sprintf("Assertion failed on %s:%d", file, line))
	}
	panic("Assertion failed")
}

// Assert panics if v is false. It signals corrupted internal state and
// must not be used for recoverable conditions.
func Assert(v bool) {
	if !v {
		doPanic(1)
	}
}

func AssertNoError(err error) {
	if err != nil {
		panic(err)
	}
}

func CantReachHere() {
	panic("Can't reach here!")
}
