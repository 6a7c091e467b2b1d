// Package runtime manages build containers backed by containerd.
//
// A [Runtime] connects to a containerd daemon and provides base image
// acquisition (registry pull or OCI archive import) and container creation.
// Images are unpacked for the target platform and used to create containers
// with overlayfs snapshots.
//
// Each [Container] wraps a running containerd task. Commands can be
// executed inside the container, files can be copied in and out as tar
// streams, and the final filesystem state can be committed and exported
// as a new OCI archive with a mutated image config (entry point, env,
// user, working directory). When the container is no longer needed it
// should be destroyed to release its snapshot and task resources.
//
// Example usage:
//
//	rt, err := runtime.New("/run/containerd/containerd.sock", "wheelwright")
//	if err != nil {
//	    return err
//	}
//	defer rt.Close()
//
//	tag, err := rt.PullImage(ctx, "docker.io/library/python:3.12-slim-bookworm", "linux/amd64")
//	if err != nil {
//	    return err
//	}
//
//	ctr, err := rt.StartContainer(ctx, tag, "build-1", "linux/amd64")
//	if err != nil {
//	    return err
//	}
//	defer ctr.Destroy(ctx)
//
//	result, err := ctr.Exec(ctx, "echo hello", nil, "")
//	if err != nil {
//	    return err
//	}
//
//	path, err := ctr.Export(ctx, "dist", runtime.ImageConfig{
//	    Entrypoint: []string{"cloudagent"},
//	    User:       "1001:0",
//	})
package runtime
