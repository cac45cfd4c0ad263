// Package wav decodes and encodes the RIFF/WAVE payloads that carry
// synthesized speech to the robot.
//
// The robot's speech channel only accepts 16-bit linear PCM at 16 kHz mono.
// Decode never coerces: a payload in any other format decodes successfully
// and is then rejected by Audio.CheckFormat with a *FormatError.
package wav
