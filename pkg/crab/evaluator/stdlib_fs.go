package evaluator

import (
	"fmt"
	"os"
	"time"

	"github.com/docker/go-units"
)

func registerFilesystem(r *Registry) {
	r.Register("cat", func(rt *Runtime, args []Value) Value {
		arity("cat", args, 1, 1)
		path := expectString("cat", args[0])
		rt.checkAccess("cat", path, "read")

		if rt.MaxReadSize > 0 {
			info, err := os.Stat(path)
			if err != nil {
				ioFailure("cat", fmt.Errorf("stat %s: %w", path, err))
			}
			if info.Size() > rt.MaxReadSize {
				fail("IO-0002", map[string]any{
					"Function": "cat",
					"Path":     path,
					"Limit":    units.HumanSize(float64(rt.MaxReadSize)),
				})
			}
		}

		data, err := os.ReadFile(path)
		if err != nil {
			ioFailure("cat", fmt.Errorf("reading %s: %w", path, err))
		}
		return &String{Value: string(data)}
	})

	r.Register("rm", func(rt *Runtime, args []Value) Value {
		arity("rm", args, 1, 1)
		path := expectString("rm", args[0])
		rt.checkAccess("rm", path, "write")
		if err := os.Remove(path); err != nil {
			ioFailure("rm", fmt.Errorf("removing %s: %w", path, err))
		}
		return NONE
	})

	// touch creates the file if needed and bumps its modification time.
	r.Register("touch", func(rt *Runtime, args []Value) Value {
		arity("touch", args, 1, 1)
		path := expectString("touch", args[0])
		rt.checkAccess("touch", path, "write")
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			ioFailure("touch", fmt.Errorf("creating %s: %w", path, err))
		}
		f.Close()
		now := time.Now()
		if err := os.Chtimes(path, now, now); err != nil {
			ioFailure("touch", fmt.Errorf("updating times of %s: %w", path, err))
		}
		return NONE
	})

	r.Register("mv", func(rt *Runtime, args []Value) Value {
		arity("mv", args, 2, 2)
		from := expectString("mv", args[0])
		to := expectString("mv", args[1])
		rt.checkAccess("mv", from, "write")
		rt.checkAccess("mv", to, "write")
		if err := os.Rename(from, to); err != nil {
			ioFailure("mv", fmt.Errorf("moving %s to %s: %w", from, to, err))
		}
		return NONE
	})

	// fwrite replaces the file's contents with the display forms of the rest
	// of its arguments.
	r.Register("fwrite", func(rt *Runtime, args []Value) Value {
		arity("fwrite", args, 1, -1)
		path := expectString("fwrite", args[0])
		rt.checkAccess("fwrite", path, "write")
		if err := os.WriteFile(path, []byte(display(args[1:])), 0o644); err != nil {
			ioFailure("fwrite", fmt.Errorf("writing %s: %w", path, err))
		}
		return NONE
	})
}

func (rt *Runtime) checkAccess(name, path, operation string) {
	if err := rt.Security.CheckPathAccess(path, operation); err != nil {
		fail("SEC-0001", map[string]any{"Function": name, "Error": err.Error()})
	}
}

func ioFailure(name string, err error) {
	fail("IO-0001", map[string]any{"Function": name, "Error": err.Error()})
}
