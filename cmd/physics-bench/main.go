// Stress test for the 2D physics bridge: drops growing piles of boxes and
// circles onto a static floor and times the fixed steps.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/profile"

	"mirgo/internal/physics"
)

const step = float32(1.0 / 60.0)

func main() {
	steps := flag.Int("steps", 600, "fixed steps per run")
	mode := flag.String("profile", "", "cpu or mem, written to the working directory")
	flag.Parse()

	switch *mode {
	case "cpu":
		defer profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	case "mem":
		defer profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook).Stop()
	}

	for _, count := range []int{100, 500, 1000, 2000, 5000} {
		bench(count, *steps)
	}
}

func bench(count, steps int) {
	rng := rand.New(rand.NewSource(42))
	world := physics.NewPhysicsWorld(physics.DefaultGravity, nil)
	defer world.Destroy()

	floor := world.CreateBody(0, physics.BodyDef{Type: physics.BodyStatic, Position: mgl32.Vec2{0, -1}})
	world.AddBox(floor, physics.BoxDef{
		HalfExtents:     mgl32.Vec2{200, 1},
		FixtureMaterial: physics.FixtureMaterial{Friction: 0.6},
	})

	// spawn area widens with count to keep density reasonable
	width := 20 + float32(count)/25
	bodies := make([]physics.BodyID, 0, count)
	for i := 1; i <= count; i++ {
		pos := mgl32.Vec2{rng.Float32()*width - width/2, 1 + rng.Float32()*float32(count)/10}
		id := world.CreateBody(uint64(i), physics.BodyDef{Type: physics.BodyDynamic, Position: pos})
		mat := physics.FixtureMaterial{Density: 1, Friction: 0.5, Restitution: 0.1}
		if i%2 == 0 {
			world.AddCircle(id, physics.CircleDef{Radius: 0.25 + rng.Float32()*0.25, FixtureMaterial: mat})
		} else {
			world.AddBox(id, physics.BoxDef{HalfExtents: mgl32.Vec2{0.5, 0.5}, FixtureMaterial: mat})
		}
		bodies = append(bodies, id)
	}

	start := time.Now()
	for i := 0; i < steps; i++ {
		world.Step(step)
	}
	elapsed := time.Since(start)

	resting := 0
	for _, id := range bodies {
		if v, ok := world.BodyVelocity(id); ok && v.Len() < 0.05 {
			resting++
		}
	}

	fmt.Printf("%5d bodies: %10v total | %8v/step | %5d resting\n",
		count, elapsed.Round(time.Microsecond),
		(elapsed / time.Duration(steps)).Round(time.Microsecond), resting)
}
