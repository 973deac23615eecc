/*
 * doc.go, part of chemfiles.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Package v3 implements the geometric primitives used throughout chemfiles:
// a fixed 3-component Vector3D, a 3x3 Matrix3D, and a Coords type, a row-major
// Nx3 matrix of Vector3D used to hold the positions or velocities of a Frame.
// Coords is built on top of gonum's mat.Dense, in the same way goChem's v3.Matrix
// wraps gonum to represent atomic coordinates.
package v3
